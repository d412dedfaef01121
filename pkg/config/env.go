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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names read by Environment.
const (
	EnvGitHubToken              = "GITHUB_TOKEN"
	EnvAzureOpenAIAPIKey        = "AZURE_OPENAI_API_KEY"
	EnvAzureOpenAIEndpoint      = "AZURE_OPENAI_ENDPOINT"
	EnvAzureOpenAIAPIVersion    = "AZURE_OPENAI_API_VERSION"
	EnvAICoreBaseURL            = "AICORE_BASE_URL"
	EnvAICoreAuthURL            = "AICORE_AUTH_URL"
	EnvAICoreClientID           = "AICORE_CLIENT_ID"
	EnvAICoreClientSecret       = "AICORE_CLIENT_SECRET"
	EnvAICoreResourceGroup      = "AICORE_RESOURCE_GROUP"
	EnvAICoreScenarioID         = "AICORE_SCENARIO_ID"
	EnvAICoreDeploymentName     = "AICORE_DEPLOYMENT_NAME"
	EnvAICoreOpenAIAPIVersion   = "AICORE_OPENAI_API_VERSION"
	EnvAICoreAPIVersion         = "AICORE_API_VERSION"
	EnvCompletionDeploymentName = "COMPLETION_DEPLOYMENT_NAME"
)

// Environment is a snapshot of the backend-related environment variables.
//
// It is read once at the process boundary and passed by value into the
// backend selector, so business logic never consults os.Getenv directly.
// All values are whitespace-trimmed; an unset variable reads as "".
type Environment struct {
	GitHubToken string

	AzureOpenAIAPIKey     string
	AzureOpenAIEndpoint   string
	AzureOpenAIAPIVersion string

	AICoreBaseURL          string
	AICoreAuthURL          string
	AICoreClientID         string
	AICoreClientSecret     string
	AICoreResourceGroup    string
	AICoreScenarioID       string
	AICoreDeploymentName   string
	AICoreOpenAIAPIVersion string
	AICoreAPIVersion       string

	CompletionDeploymentName string
}

// LookupFunc matches the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvironmentFromOS snapshots the current process environment.
func EnvironmentFromOS() Environment {
	return EnvironmentFrom(os.LookupEnv)
}

// EnvironmentFrom builds an Environment from an arbitrary lookup function.
func EnvironmentFrom(lookup LookupFunc) Environment {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	return Environment{
		GitHubToken:              get(EnvGitHubToken),
		AzureOpenAIAPIKey:        get(EnvAzureOpenAIAPIKey),
		AzureOpenAIEndpoint:      get(EnvAzureOpenAIEndpoint),
		AzureOpenAIAPIVersion:    get(EnvAzureOpenAIAPIVersion),
		AICoreBaseURL:            get(EnvAICoreBaseURL),
		AICoreAuthURL:            get(EnvAICoreAuthURL),
		AICoreClientID:           get(EnvAICoreClientID),
		AICoreClientSecret:       get(EnvAICoreClientSecret),
		AICoreResourceGroup:      get(EnvAICoreResourceGroup),
		AICoreScenarioID:         get(EnvAICoreScenarioID),
		AICoreDeploymentName:     get(EnvAICoreDeploymentName),
		AICoreOpenAIAPIVersion:   get(EnvAICoreOpenAIAPIVersion),
		AICoreAPIVersion:         get(EnvAICoreAPIVersion),
		CompletionDeploymentName: get(EnvCompletionDeploymentName),
	}
}

// MapLookup adapts a map to a LookupFunc. Useful in tests.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// LoadDotEnv loads .env.local and .env from the working directory.
// Missing files are ignored; variables already set are never overridden.
func LoadDotEnv() error {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// LoadDotEnvForConfig loads a .env file that sits next to the config file,
// then the working-directory files.
func LoadDotEnvForConfig(configPath string) error {
	if configPath != "" {
		path := filepath.Join(filepath.Dir(configPath), ".env")
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return LoadDotEnv()
}
