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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// TokenFunc fetches an OAuth2 access token.
type TokenFunc func(ctx context.Context) (*oauth2.Token, error)

// RegistryClient queries the AI Core deployment API.
type RegistryClient struct {
	baseURL    string
	token      TokenFunc
	httpClient *http.Client
}

// RegistryOption configures a RegistryClient.
type RegistryOption func(*RegistryClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) RegistryOption {
	return func(c *RegistryClient) {
		c.httpClient = client
	}
}

// NewRegistryClient creates a client for the AI Core API at baseURL. A
// missing "/v2" suffix is added.
func NewRegistryClient(baseURL string, token TokenFunc, opts ...RegistryOption) *RegistryClient {
	c := &RegistryClient{
		baseURL:    APIBaseURL(baseURL),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIBaseURL normalizes AICORE_BASE_URL to end in "/v2".
func APIBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/v2") {
		baseURL += "/v2"
	}
	return baseURL
}

type deploymentList struct {
	Count     int         `json:"count"`
	Resources []Candidate `json:"resources"`
}

// Query lists the deployments of resourceGroup filtered by scenarioID, in
// the order the API returns them.
func (c *RegistryClient) Query(ctx context.Context, resourceGroup, scenarioID string) ([]Candidate, error) {
	q := url.Values{}
	if scenarioID != "" {
		q.Set("scenarioId", scenarioID)
	}
	endpoint := c.baseURL + "/lm/deployments"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderResourceGroup, resourceGroup)

	tok, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate against AI Core: %w", err)
	}
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query deployments: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RegistryError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var list deploymentList
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode registry response: %w", err)
	}
	return list.Resources, nil
}
