// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aicore

import (
	"sort"
	"strings"
)

// Deployment is the endpoint chosen for a resolution.
type Deployment struct {
	URL  string
	Name string
}

type indexed struct {
	candidate Candidate
	ids       []string
}

// SelectDeployment picks a deployment from the registry candidates.
//
// Candidates without identifiers are ignored. With a DeploymentName set,
// the first candidate whose identifiers or URL-derived name equal it
// (case-insensitively, after trimming) wins. Otherwise the first candidate
// in registry order is used.
func SelectDeployment(candidates []Candidate, settings Settings) (Deployment, error) {
	var usable []indexed
	for _, c := range candidates {
		if ids := Identifiers(c); len(ids) > 0 {
			usable = append(usable, indexed{candidate: c, ids: ids})
		}
	}
	if len(usable) == 0 {
		return Deployment{}, ErrNoDeployments
	}

	target := strings.ToLower(strings.TrimSpace(settings.DeploymentName))
	if target == "" {
		return deploymentOf(usable[0])
	}

	for _, u := range usable {
		if matches(u, target) {
			return deploymentOf(u)
		}
	}

	return Deployment{}, &DeploymentNotFoundError{
		DeploymentName: settings.DeploymentName,
		ResourceGroup:  settings.ResourceGroup,
		ScenarioID:     settings.ScenarioID,
		Available:      availableAliases(usable),
	}
}

func matches(u indexed, target string) bool {
	for _, id := range u.ids {
		if strings.ToLower(id) == target {
			return true
		}
	}
	// The URL-derived name is an alias as well.
	if name := InferDeploymentName(u.candidate.DeploymentURL()); name != "" {
		return strings.ToLower(name) == target
	}
	return false
}

func deploymentOf(u indexed) (Deployment, error) {
	url := u.candidate.DeploymentURL()
	if url == "" {
		return Deployment{}, ErrMissingEndpoint
	}
	name := InferDeploymentName(url)
	if name == "" {
		name = strings.TrimSpace(u.ids[0])
	}
	if name == "" {
		return Deployment{}, ErrMissingDeploymentName
	}
	return Deployment{URL: url, Name: name}, nil
}

func availableAliases(usable []indexed) []string {
	set := make(map[string]struct{})
	for _, u := range usable {
		for _, id := range u.ids {
			set[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
