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

package backend

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an unusable caller-supplied setting.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var (
	// ErrModelNameMissing is returned for a blank model name.
	ErrModelNameMissing = &ConfigurationError{
		Field:   "model name",
		Message: "model name must be provided (set COMPLETION_DEPLOYMENT_NAME or pass --model)",
	}

	// ErrNoBackendConfigured is returned when the environment signals none
	// of the supported backends.
	ErrNoBackendConfigured = errors.New("no chat backend configured: set AICORE_BASE_URL, AZURE_OPENAI_ENDPOINT or GITHUB_TOKEN")
)
