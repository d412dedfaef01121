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

// Package backend chooses the chat completions backend from environment
// signals and produces the matching client configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kadirpekel/hector-samples/pkg/aicore"
	"github.com/kadirpekel/hector-samples/pkg/config"
	"github.com/kadirpekel/hector-samples/pkg/credentials"
	"github.com/kadirpekel/hector-samples/pkg/metrics"
	"github.com/kadirpekel/hector-samples/pkg/model/openai"
)

// Kind identifies a backend.
type Kind string

const (
	KindSAPAICore    Kind = "sap-aicore"
	KindAzureAPIKey  Kind = "azure-api-key"
	KindAzureAAD     Kind = "azure-aad"
	KindGitHubModels Kind = "github-models"
)

const (
	// GitHubModelsBaseURL is the GitHub Models inference endpoint.
	GitHubModelsBaseURL = "https://models.github.ai/inference"

	// DefaultAICoreOpenAIAPIVersion applies when AICORE_OPENAI_API_VERSION
	// is unset. Standalone AI Core settings default to
	// aicore.DefaultAPIVersion instead.
	DefaultAICoreOpenAIAPIVersion = "2024-10-01-preview"
)

// DeploymentResolver resolves SAP AI Core deployments.
type DeploymentResolver interface {
	Resolve(ctx context.Context, settings aicore.Settings) (*aicore.Resolution, error)
}

// ResolverFactory builds a DeploymentResolver for an environment. It is
// only called when the SAP AI Core branch is taken.
type ResolverFactory func(env config.Environment) (DeploymentResolver, error)

// TokenProviderFactory builds an AAD token provider for scope. It is only
// called when the Azure AAD branch is taken.
type TokenProviderFactory func(scope string) (openai.TokenProvider, error)

// Selector implements CreateChatClient.
type Selector struct {
	resolvers ResolverFactory
	aad       TokenProviderFactory
	logger    *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithResolver uses r for every SAP AI Core resolution.
func WithResolver(r DeploymentResolver) Option {
	return func(s *Selector) {
		s.resolvers = func(config.Environment) (DeploymentResolver, error) { return r, nil }
	}
}

// WithResolverFactory replaces the default AI Core resolver wiring.
func WithResolverFactory(f ResolverFactory) Option {
	return func(s *Selector) {
		s.resolvers = f
	}
}

// WithTokenProviderFactory replaces the default AAD credential chain.
func WithTokenProviderFactory(f TokenProviderFactory) Option {
	return func(s *Selector) {
		s.aad = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector creates a Selector wired to the real AI Core API and the
// DefaultAzureCredential chain unless overridden.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		resolvers: defaultResolverFactory,
		aad:       defaultTokenProviderFactory,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func defaultResolverFactory(env config.Environment) (DeploymentResolver, error) {
	r, err := aicore.NewResolverFromEnvironment(env)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func defaultTokenProviderFactory(scope string) (openai.TokenProvider, error) {
	p, err := credentials.NewDefaultAzureTokenProvider(scope)
	if err != nil {
		return nil, err
	}
	return p.Token, nil
}

// CreateChatClient is NewSelector().CreateChatClient.
func CreateChatClient(ctx context.Context, modelName string, env config.Environment) (*openai.Config, error) {
	return NewSelector().CreateChatClient(ctx, modelName, env)
}

// CreateChatClient returns the chat client configuration for the first
// backend signalled by env, in the order SAP AI Core, Azure OpenAI, GitHub
// Models. modelName is the model id or deployment name to use.
func (s *Selector) CreateChatClient(ctx context.Context, modelName string, env config.Environment) (*openai.Config, error) {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		return nil, ErrModelNameMissing
	}

	var (
		cfg *openai.Config
		err error
	)
	switch {
	case env.AICoreBaseURL != "":
		cfg, err = s.sapAICore(ctx, modelName, env)
	case env.AzureOpenAIEndpoint != "" && env.AzureOpenAIAPIKey != "":
		s.logger.Info("Using Azure OpenAI with API key", "endpoint", env.AzureOpenAIEndpoint, "deployment", modelName)
		cfg = &openai.Config{
			Flavor:     openai.FlavorAzure,
			Backend:    string(KindAzureAPIKey),
			Model:      modelName,
			Endpoint:   env.AzureOpenAIEndpoint,
			APIKey:     env.AzureOpenAIAPIKey,
			APIVersion: env.AzureOpenAIAPIVersion,
		}
	case env.AzureOpenAIEndpoint != "":
		cfg, err = s.azureAAD(modelName, env)
	case env.GitHubToken != "":
		s.logger.Info("Using GitHub Models", "model", modelName)
		cfg = &openai.Config{
			Flavor:  openai.FlavorOpenAI,
			Backend: string(KindGitHubModels),
			Model:   modelName,
			BaseURL: GitHubModelsBaseURL,
			APIKey:  env.GitHubToken,
		}
	default:
		return nil, ErrNoBackendConfigured
	}
	if err != nil {
		return nil, err
	}

	metrics.BackendSelections.WithLabelValues(cfg.Backend).Inc()
	return cfg, nil
}

func (s *Selector) sapAICore(ctx context.Context, modelName string, env config.Environment) (*openai.Config, error) {
	apiVersion := env.AICoreOpenAIAPIVersion
	if apiVersion == "" {
		apiVersion = DefaultAICoreOpenAIAPIVersion
	}
	settings := aicore.Settings{
		ResourceGroup:  env.AICoreResourceGroup,
		ScenarioID:     env.AICoreScenarioID,
		DeploymentName: modelName,
		APIVersion:     apiVersion,
	}.WithDefaults()

	s.logger.Info("Using SAP AI Core",
		"resource_group", settings.ResourceGroup,
		"scenario", settings.ScenarioID,
		"deployment", modelName)

	resolver, err := s.resolvers(env)
	if err != nil {
		return nil, err
	}
	res, err := resolver.Resolve(ctx, settings)
	if err != nil {
		return nil, err
	}

	cfg := &openai.Config{
		Flavor:         openai.FlavorAzure,
		Backend:        string(KindSAPAICore),
		Model:          res.DeploymentName,
		BaseURL:        res.URL,
		APIVersion:     settings.APIVersion,
		DefaultHeaders: settings.DefaultHeaders(),
	}
	if res.Refresh != nil {
		cfg.TokenProvider = res.Refresh
		cfg.TokenAsAPIKey = true
		return cfg, nil
	}
	cfg.APIKey = res.Token
	cfg.DefaultHeaders["Authorization"] = "Bearer " + res.Token
	return cfg, nil
}

func (s *Selector) azureAAD(modelName string, env config.Environment) (*openai.Config, error) {
	s.logger.Info("Using Azure OpenAI with Azure AD credentials", "endpoint", env.AzureOpenAIEndpoint, "deployment", modelName)

	provider, err := s.aad(credentials.CognitiveServicesScope)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure AD token provider: %w", err)
	}
	return &openai.Config{
		Flavor:        openai.FlavorAzure,
		Backend:       string(KindAzureAAD),
		Model:         modelName,
		Endpoint:      env.AzureOpenAIEndpoint,
		TokenProvider: provider,
		APIVersion:    env.AzureOpenAIAPIVersion,
	}, nil
}
