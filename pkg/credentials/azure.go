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

// Package credentials provides bearer-token sources for LLM backends.
package credentials

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// CognitiveServicesScope is the AAD scope for Azure OpenAI.
const CognitiveServicesScope = "https://cognitiveservices.azure.com/.default"

// refreshBuffer is how long before expiry a cached token is replaced.
const refreshBuffer = 5 * time.Minute

// AzureTokenProvider hands out AAD access tokens for a fixed scope,
// caching each token until it is close to expiry.
type AzureTokenProvider struct {
	cred  azcore.TokenCredential
	scope string
	now   func() time.Time

	mu     sync.RWMutex
	cached *azcore.AccessToken
}

// NewAzureTokenProvider wraps an existing credential.
func NewAzureTokenProvider(cred azcore.TokenCredential, scope string) *AzureTokenProvider {
	if scope == "" {
		scope = CognitiveServicesScope
	}
	return &AzureTokenProvider{cred: cred, scope: scope, now: time.Now}
}

// NewDefaultAzureTokenProvider uses the DefaultAzureCredential chain
// (environment, workload identity, managed identity, Azure CLI).
func NewDefaultAzureTokenProvider(scope string) (*AzureTokenProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return NewAzureTokenProvider(cred, scope), nil
}

// Token returns a valid access token, refreshing it when needed.
func (p *AzureTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.fresh() {
		token := p.cached.Token
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fresh() {
		return p.cached.Token, nil
	}

	token, err := p.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{p.scope}})
	if err != nil {
		return "", fmt.Errorf("failed to get Azure token: %w", err)
	}
	p.cached = &token
	return token.Token, nil
}

// fresh must be called with p.mu held.
func (p *AzureTokenProvider) fresh() bool {
	return p.cached != nil && p.cached.ExpiresOn.After(p.now().Add(refreshBuffer))
}
