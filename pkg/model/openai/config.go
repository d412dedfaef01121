// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Flavor selects the URL layout and authentication scheme.
type Flavor string

const (
	// FlavorOpenAI is the plain OpenAI layout, also used by GitHub Models.
	FlavorOpenAI Flavor = "openai"
	// FlavorAzure is the Azure OpenAI layout, also used by the SAP AI Core
	// proxy.
	FlavorAzure Flavor = "azure"
)

const (
	DefaultBaseURL         = "https://api.openai.com/v1"
	DefaultAzureAPIVersion = "2024-10-21"
	defaultMaxTokens       = 4096
	defaultTimeout         = 120 * time.Second
	defaultMaxRetries      = 5
)

// TokenProvider returns a bearer token for each request. Implementations
// own caching and refresh.
type TokenProvider func(ctx context.Context) (string, error)

// Config describes how to reach a chat completions endpoint.
type Config struct {
	Flavor Flavor

	// Backend tags the configuration with the backend that produced it,
	// for logs and metrics.
	Backend string

	// Model is the model id (OpenAI flavor) or deployment name (Azure).
	Model string

	// Endpoint is the Azure resource endpoint. The deployment path is
	// appended to it.
	Endpoint string

	// BaseURL is a complete base URL; "/chat/completions" is appended.
	// Takes precedence over Endpoint.
	BaseURL string

	APIKey        string
	TokenProvider TokenProvider

	// TokenAsAPIKey also sends the provider token in the api-key header.
	TokenAsAPIKey bool

	// APIVersion is the api-version query parameter (Azure flavor only).
	APIVersion string

	// DefaultHeaders are set on every request after authentication headers.
	DefaultHeaders map[string]string

	Timeout     time.Duration
	MaxRetries  int
	Temperature *float64
	MaxTokens   int
}

// Validate reports configurations that cannot produce a request.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("model is required")
	}
	switch c.Flavor {
	case FlavorOpenAI, "":
		if c.APIKey == "" {
			return errors.New("API key is required")
		}
	case FlavorAzure:
		if c.BaseURL == "" && c.Endpoint == "" {
			return errors.New("azure flavor requires an endpoint or base URL")
		}
		if c.APIKey == "" && c.TokenProvider == nil {
			return errors.New("azure flavor requires an API key or token provider")
		}
	default:
		return errors.New("unknown flavor " + string(c.Flavor))
	}
	return nil
}

// LogValue implements slog.LogValuer. Secrets are never logged.
func (c Config) LogValue() slog.Value {
	auth := "none"
	switch {
	case c.APIKey != "":
		auth = "api-key"
	case c.TokenProvider != nil:
		auth = "token-provider"
	}
	attrs := []slog.Attr{
		slog.String("backend", c.Backend),
		slog.String("flavor", string(c.Flavor)),
		slog.String("model", c.Model),
		slog.String("auth", auth),
	}
	if c.BaseURL != "" {
		attrs = append(attrs, slog.String("base_url", c.BaseURL))
	}
	if c.Endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", c.Endpoint))
	}
	if c.APIVersion != "" {
		attrs = append(attrs, slog.String("api_version", c.APIVersion))
	}
	return slog.GroupValue(attrs...)
}
