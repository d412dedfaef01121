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
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kadirpekel/hector-samples/pkg/config"
)

// ClientCredentials builds the OAuth2 client-credentials config for the
// AI Core service key in env.
func ClientCredentials(env config.Environment) (*clientcredentials.Config, error) {
	var missing []string
	if env.AICoreAuthURL == "" {
		missing = append(missing, config.EnvAICoreAuthURL)
	}
	if env.AICoreClientID == "" {
		missing = append(missing, config.EnvAICoreClientID)
	}
	if env.AICoreClientSecret == "" {
		missing = append(missing, config.EnvAICoreClientSecret)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: set %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	tokenURL := strings.TrimRight(env.AICoreAuthURL, "/")
	if !strings.HasSuffix(tokenURL, "/oauth/token") {
		tokenURL += "/oauth/token"
	}

	return &clientcredentials.Config{
		ClientID:     env.AICoreClientID,
		ClientSecret: env.AICoreClientSecret,
		TokenURL:     tokenURL,
	}, nil
}

// ProxyTokenSource hands out GenAI Hub proxy tokens in "Bearer <token>"
// form. Every call performs a fresh exchange.
type ProxyTokenSource struct {
	token TokenFunc
}

// NewProxyTokenSource wraps a token fetcher, typically
// (*clientcredentials.Config).Token.
func NewProxyTokenSource(token TokenFunc) *ProxyTokenSource {
	return &ProxyTokenSource{token: token}
}

// Token implements TokenSource.
func (s *ProxyTokenSource) Token(ctx context.Context) (string, error) {
	tok, err := s.token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get AI Core token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", nil
	}
	return tok.Type() + " " + tok.AccessToken, nil
}

// NewResolverFromEnvironment wires a Resolver to the AI Core API described
// by env.
func NewResolverFromEnvironment(env config.Environment, opts ...ResolverOption) (*Resolver, error) {
	if env.AICoreBaseURL == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingCredentials, config.EnvAICoreBaseURL)
	}
	cc, err := ClientCredentials(env)
	if err != nil {
		return nil, err
	}
	cached := cc.TokenSource(context.Background())
	opts = append([]ResolverOption{WithRefreshSource(NewProxyTokenSource(reuse(cached)))}, opts...)
	return NewResolver(
		NewRegistryClient(env.AICoreBaseURL, cc.Token),
		NewProxyTokenSource(cc.Token),
		opts...,
	), nil
}

// reuse adapts an oauth2.TokenSource, which caches until expiry, to a
// TokenFunc.
func reuse(ts oauth2.TokenSource) TokenFunc {
	return func(context.Context) (*oauth2.Token, error) {
		return ts.Token()
	}
}
