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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoDeployments is returned when the registry yields no candidate
	// with at least one identifier.
	ErrNoDeployments = errors.New("no SAP AI Core deployments were returned; verify the resource group and scenario id")

	// ErrMissingEndpoint is returned when the selected deployment has no URL.
	ErrMissingEndpoint = errors.New("selected deployment is missing a deployment URL")

	// ErrMissingDeploymentName is returned when no canonical name can be
	// derived from the URL or the candidate identifiers.
	ErrMissingDeploymentName = errors.New("set AICORE_DEPLOYMENT_NAME or ensure the deployment URL contains '/deployments/<name>'")

	// ErrEmptyToken is returned when the token service yields nothing usable.
	ErrEmptyToken = errors.New("AI Core token is empty")

	// ErrMissingCredentials is returned when the client credentials needed
	// to reach AI Core are not configured.
	ErrMissingCredentials = errors.New("AI Core client credentials are not configured")
)

// DeploymentNotFoundError reports a requested deployment name that matched
// none of the registry candidates.
type DeploymentNotFoundError struct {
	DeploymentName string
	ResourceGroup  string
	ScenarioID     string
	// Available is sorted and de-duplicated.
	Available []string
}

func (e *DeploymentNotFoundError) Error() string {
	available := strings.Join(e.Available, ", ")
	if available == "" {
		available = "<none>"
	}
	return fmt.Sprintf("deployment '%s' not found in resource group '%s' and scenario '%s'. Available: %s",
		e.DeploymentName, e.ResourceGroup, e.ScenarioID, available)
}

// RegistryError is a non-2xx response from the deployment registry.
type RegistryError struct {
	StatusCode int
	Body       string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("deployment registry returned HTTP %d: %s", e.StatusCode, e.Body)
}
