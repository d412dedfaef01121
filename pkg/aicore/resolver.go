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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kadirpekel/hector-samples/pkg/metrics"
)

const tracerName = "github.com/kadirpekel/hector-samples/pkg/aicore"

// Registry lists the deployments of a resource group and scenario.
type Registry interface {
	Query(ctx context.Context, resourceGroup, scenarioID string) ([]Candidate, error)
}

// TokenSource exchanges GenAI Hub credentials for an AI Core token. The
// returned value may carry a "Bearer " prefix.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Resolution is everything needed to build a chat client for a deployment.
type Resolution struct {
	URL            string
	DeploymentName string
	Token          string

	// Refresh returns a current token for long-lived clients. Nil when the
	// resolver has no refresh source.
	Refresh func(ctx context.Context) (string, error)
}

// Resolver turns Settings into a Resolution. It keeps no state between
// calls: each Resolve queries the registry and fetches a token once.
type Resolver struct {
	registry Registry
	tokens   TokenSource
	refresh  TokenSource
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithRefreshSource sets the source handed to clients through
// Resolution.Refresh. It should cache tokens until they expire.
func WithRefreshSource(ts TokenSource) ResolverOption {
	return func(r *Resolver) {
		r.refresh = ts
	}
}

// NewResolver creates a Resolver.
func NewResolver(registry Registry, tokens TokenSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{registry: registry, tokens: tokens}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve finds the deployment described by settings and fetches a token.
// Errors from the registry and token source are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, settings Settings) (_ *Resolution, err error) {
	settings = settings.WithDefaults()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "aicore.resolve")
	span.SetAttributes(
		attribute.String("aicore.resource_group", settings.ResourceGroup),
		attribute.String("aicore.scenario_id", settings.ScenarioID),
		attribute.String("aicore.deployment_name", settings.DeploymentName),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.AICoreResolutions.WithLabelValues(resultLabel(err)).Inc()
	}()

	candidates, err := r.registry.Query(ctx, settings.ResourceGroup, settings.ScenarioID)
	if err != nil {
		return nil, err
	}

	deployment, err := SelectDeployment(candidates, settings)
	if err != nil {
		return nil, err
	}

	raw, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	token, err := normalizeToken(raw)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Resolved SAP AI Core deployment",
		"deployment", deployment.Name,
		"url", deployment.URL,
		"resource_group", settings.ResourceGroup)

	res := &Resolution{
		URL:            deployment.URL,
		DeploymentName: deployment.Name,
		Token:          token,
	}
	if r.refresh != nil {
		res.Refresh = r.refreshToken
	}
	return res, nil
}

func (r *Resolver) refreshToken(ctx context.Context) (string, error) {
	raw, err := r.refresh.Token(ctx)
	if err != nil {
		return "", err
	}
	return normalizeToken(raw)
}

// normalizeToken strips an optional "Bearer " prefix and surrounding
// whitespace.
func normalizeToken(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: token service returned nothing", ErrEmptyToken)
	}
	token := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("%w after removing the 'Bearer' prefix", ErrEmptyToken)
	}
	return token, nil
}

func resultLabel(err error) string {
	var notFound *DeploymentNotFoundError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.Is(err, ErrNoDeployments):
		return "no_deployments"
	case errors.Is(err, ErrMissingEndpoint), errors.Is(err, ErrMissingDeploymentName):
		return "invalid_deployment"
	case errors.Is(err, ErrEmptyToken):
		return "empty_token"
	default:
		return "error"
	}
}
