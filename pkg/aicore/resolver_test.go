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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	candidates []Candidate
	err        error

	calls         int
	resourceGroup string
	scenarioID    string
}

func (f *fakeRegistry) Query(_ context.Context, resourceGroup, scenarioID string) ([]Candidate, error) {
	f.calls++
	f.resourceGroup = resourceGroup
	f.scenarioID = scenarioID
	return f.candidates, f.err
}

type fakeTokens struct {
	token string
	err   error
	calls int
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.calls++
	return f.token, f.err
}

func TestResolver_Resolve(t *testing.T) {
	registry := &fakeRegistry{candidates: twoDeployments()}
	tokens := &fakeTokens{token: "Bearer abc.def"}
	r := NewResolver(registry, tokens)

	res, err := r.Resolve(context.Background(), Settings{DeploymentName: "bar"})
	require.NoError(t, err)

	assert.Equal(t, &Resolution{
		URL:            "https://x/deployments/bar",
		DeploymentName: "bar",
		Token:          "abc.def",
	}, res)
	assert.Equal(t, "default", registry.resourceGroup)
	assert.Equal(t, "foundation-models", registry.scenarioID)
}

func TestResolver_NoCaching(t *testing.T) {
	registry := &fakeRegistry{candidates: twoDeployments()}
	tokens := &fakeTokens{token: "tok"}
	r := NewResolver(registry, tokens)

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), Settings{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, registry.calls)
	assert.Equal(t, 3, tokens.calls)
}

func TestResolver_RefreshSource(t *testing.T) {
	registry := &fakeRegistry{candidates: twoDeployments()}
	tokens := &fakeTokens{token: "Bearer first"}
	refresh := &fakeTokens{token: "Bearer second"}

	res, err := NewResolver(registry, tokens).Resolve(context.Background(), Settings{})
	require.NoError(t, err)
	assert.Nil(t, res.Refresh)

	res, err = NewResolver(registry, tokens, WithRefreshSource(refresh)).Resolve(context.Background(), Settings{})
	require.NoError(t, err)
	assert.Equal(t, "first", res.Token)
	assert.Zero(t, refresh.calls)
	require.NotNil(t, res.Refresh)

	token, err := res.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	refresh.token = "Bearer "
	_, err = res.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrEmptyToken)

	refresh.err = errors.New("auth down")
	_, err = res.Refresh(context.Background())
	assert.EqualError(t, err, "auth down")
}

func TestResolver_TokenNormalization(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "prefixed", raw: "Bearer xyz", want: "xyz"},
		{name: "bare", raw: "xyz", want: "xyz"},
		{name: "padded", raw: "  xyz \n", want: "xyz"},
		{name: "empty", raw: "", wantErr: true},
		{name: "prefix and whitespace", raw: "Bearer   ", wantErr: true},
		{name: "whitespace", raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&fakeRegistry{candidates: twoDeployments()}, &fakeTokens{token: tt.raw})
			res, err := r.Resolve(context.Background(), Settings{})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyToken)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Token)
		})
	}
}

func TestResolver_PropagatesErrors(t *testing.T) {
	registryErr := errors.New("registry unavailable")
	r := NewResolver(&fakeRegistry{err: registryErr}, &fakeTokens{token: "t"})
	_, err := r.Resolve(context.Background(), Settings{})
	assert.Equal(t, registryErr, err)

	tokenErr := errors.New("token service down")
	r = NewResolver(&fakeRegistry{candidates: twoDeployments()}, &fakeTokens{err: tokenErr})
	_, err = r.Resolve(context.Background(), Settings{})
	assert.Equal(t, tokenErr, err)
}

func TestResolver_SelectionFailureSkipsTokenExchange(t *testing.T) {
	tokens := &fakeTokens{token: "t"}
	r := NewResolver(&fakeRegistry{candidates: twoDeployments()}, tokens)

	_, err := r.Resolve(context.Background(), Settings{DeploymentName: "missing"})

	var notFound *DeploymentNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "a, b")
	assert.Zero(t, tokens.calls)
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "success", resultLabel(nil))
	assert.Equal(t, "not_found", resultLabel(&DeploymentNotFoundError{}))
	assert.Equal(t, "no_deployments", resultLabel(ErrNoDeployments))
	assert.Equal(t, "invalid_deployment", resultLabel(ErrMissingEndpoint))
	assert.Equal(t, "empty_token", resultLabel(ErrEmptyToken))
	assert.Equal(t, "error", resultLabel(errors.New("x")))
}
