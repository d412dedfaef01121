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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/kadirpekel/hector-samples/pkg/config"
)

func staticToken(value string) TokenFunc {
	return func(context.Context) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: value, TokenType: "Bearer"}, nil
	}
}

func TestAPIBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.ai.example.com/v2", APIBaseURL("https://api.ai.example.com"))
	assert.Equal(t, "https://api.ai.example.com/v2", APIBaseURL("https://api.ai.example.com/v2/"))
}

func TestRegistryClient_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/lm/deployments", r.URL.Path)
		assert.Equal(t, "foundation-models", r.URL.Query().Get("scenarioId"))
		assert.Equal(t, "team-a", r.Header.Get("AI-Resource-Group"))
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"count":2,"resources":[
			{"id":"d1","configurationName":"gpt-4o","deploymentUrl":"https://x/v2/inference/deployments/d1","status":"RUNNING"},
			{"id":"d2","configurationName":"gpt-4o-mini","deploymentUrl":"https://x/v2/inference/deployments/d2"}
		]}`)
	}))
	defer srv.Close()

	c := NewRegistryClient(srv.URL, staticToken("svc-token"), WithHTTPClient(srv.Client()))
	got, err := c.Query(context.Background(), "team-a", "foundation-models")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"d1", "gpt-4o"}, Identifiers(got[0]))
	assert.Equal(t, "https://x/v2/inference/deployments/d2", got[1].DeploymentURL())
}

func TestRegistryClient_QueryNumericIdentifiers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"resources":[
			{"id":1234567890,"deploymentUrl":"https://x/v2/inference/deployments/d9"}
		]}`)
	}))
	defer srv.Close()

	c := NewRegistryClient(srv.URL, staticToken("svc-token"), WithHTTPClient(srv.Client()))
	got, err := c.Query(context.Background(), "default", "foundation-models")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"1234567890"}, Identifiers(got[0]))

	dep, err := SelectDeployment(got, Settings{DeploymentName: "1234567890", APIVersion: "2023-05-15"})
	require.NoError(t, err)
	assert.Equal(t, "https://x/v2/inference/deployments/d9", dep.URL)
	assert.Equal(t, "d9", dep.Name)
}

func TestRegistryClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewRegistryClient(srv.URL, staticToken("t"))
	_, err := c.Query(context.Background(), "default", "foundation-models")

	var regErr *RegistryError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, http.StatusForbidden, regErr.StatusCode)
	assert.Equal(t, "forbidden", regErr.Body)
}

func TestProxyTokenSource(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"access_token":"proxy-token","token_type":"bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	cc, err := ClientCredentials(config.Environment{
		AICoreAuthURL:      srv.URL,
		AICoreClientID:     "id",
		AICoreClientSecret: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/oauth/token", cc.TokenURL)

	src := NewProxyTokenSource(cc.Token)
	first, err := src.Token(context.Background())
	require.NoError(t, err)
	_, err = src.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer proxy-token", first)
	assert.Equal(t, 2, calls)

	token, err := normalizeToken(first)
	require.NoError(t, err)
	assert.Equal(t, "proxy-token", token)
}

func TestClientCredentials_Missing(t *testing.T) {
	_, err := ClientCredentials(config.Environment{AICoreClientID: "id"})
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Contains(t, err.Error(), "AICORE_AUTH_URL")
	assert.Contains(t, err.Error(), "AICORE_CLIENT_SECRET")
	assert.NotContains(t, err.Error(), "AICORE_CLIENT_ID")
}

func TestNewResolverFromEnvironment(t *testing.T) {
	_, err := NewResolverFromEnvironment(config.Environment{})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	r, err := NewResolverFromEnvironment(config.Environment{
		AICoreBaseURL:      "https://api.ai.example.com",
		AICoreAuthURL:      "https://auth.example.com/oauth/token",
		AICoreClientID:     "id",
		AICoreClientSecret: "secret",
	})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.NotNil(t, r.refresh)
}
