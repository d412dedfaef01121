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

// Package aicore resolves SAP AI Core (GenAI Hub) deployments into an
// endpoint URL, a canonical deployment name and a bearer token.
package aicore

import (
	"github.com/kadirpekel/hector-samples/pkg/config"
)

const (
	DefaultResourceGroup = "default"
	DefaultScenarioID    = "foundation-models"

	// DefaultAPIVersion applies to standalone settings built from
	// AICORE_API_VERSION. The backend selector uses its own default.
	DefaultAPIVersion = "2023-05-15"

	// HeaderResourceGroup scopes every AI Core request to a resource group.
	HeaderResourceGroup = "AI-Resource-Group"
)

// Settings selects the registry scope and, optionally, a deployment.
// Use WithDefaults before querying so no field is left blank.
type Settings struct {
	ResourceGroup  string
	ScenarioID     string
	DeploymentName string
	APIVersion     string
}

// SettingsFromEnvironment reads AICORE_RESOURCE_GROUP, AICORE_SCENARIO_ID,
// AICORE_DEPLOYMENT_NAME and AICORE_API_VERSION, applying defaults.
func SettingsFromEnvironment(env config.Environment) Settings {
	return Settings{
		ResourceGroup:  env.AICoreResourceGroup,
		ScenarioID:     env.AICoreScenarioID,
		DeploymentName: env.AICoreDeploymentName,
		APIVersion:     env.AICoreAPIVersion,
	}.WithDefaults()
}

// WithDefaults returns a copy with blank fields defaulted. DeploymentName
// stays blank when unset; that selects the first deployment.
func (s Settings) WithDefaults() Settings {
	if s.ResourceGroup == "" {
		s.ResourceGroup = DefaultResourceGroup
	}
	if s.ScenarioID == "" {
		s.ScenarioID = DefaultScenarioID
	}
	if s.APIVersion == "" {
		s.APIVersion = DefaultAPIVersion
	}
	return s
}

// DefaultHeaders are sent with every chat request routed through AI Core.
func (s Settings) DefaultHeaders() map[string]string {
	return map[string]string{HeaderResourceGroup: s.ResourceGroup}
}
