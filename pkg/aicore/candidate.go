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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IdentifierFields lists, in order, the registry fields that may name a
// deployment.
var IdentifierFields = []string{
	"id",
	"name",
	"configurationName",
	"configuration_name",
	"configurationId",
	"configuration_id",
}

// Candidate is one deployment resource as returned by the registry.
type Candidate map[string]any

// Identifiers returns the non-empty values of IdentifierFields in order,
// without duplicates.
func Identifiers(c Candidate) []string {
	var ids []string
	seen := make(map[string]struct{}, len(IdentifierFields))
	for _, field := range IdentifierFields {
		v := c.field(field)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		ids = append(ids, v)
	}
	return ids
}

// DeploymentURL returns deploymentUrl, or deployment_url as sent by older
// registry versions.
func (c Candidate) DeploymentURL() string {
	if u := c.field("deploymentUrl"); u != "" {
		return u
	}
	return c.field("deployment_url")
}

func (c Candidate) field(name string) string {
	v, ok := c[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// InferDeploymentName returns the path segment that follows the first
// "deployments" segment of url, or "" when there is none.
func InferDeploymentName(url string) string {
	var parts []string
	for _, p := range strings.Split(strings.TrimRight(url, "/"), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	for i, p := range parts {
		if p == "deployments" {
			if i+1 < len(parts) {
				return parts[i+1]
			}
			return ""
		}
	}
	return ""
}
