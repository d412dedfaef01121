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

package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c := New()
	assert.Equal(t, 5, c.maxRetries)
	assert.Equal(t, 2*time.Second, c.baseDelay)
	assert.Equal(t, 60*time.Second, c.client.Timeout)
	assert.NotNil(t, c.strategyFunc)
	assert.NotNil(t, c.logger)
}

func TestDefaultRetryStrategy(t *testing.T) {
	tests := []struct {
		status int
		want   RetryStrategy
	}{
		{http.StatusTooManyRequests, SmartRetry},
		{http.StatusServiceUnavailable, SmartRetry},
		{http.StatusInternalServerError, ConservativeRetry},
		{http.StatusBadGateway, ConservativeRetry},
		{http.StatusGatewayTimeout, ConservativeRetry},
		{http.StatusRequestTimeout, ConservativeRetry},
		{http.StatusBadRequest, NoRetry},
		{http.StatusUnauthorized, NoRetry},
		{http.StatusNotFound, NoRetry},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultRetryStrategy(tt.status), "status %d", tt.status)
	}
}

func TestDo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := New().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_NonRetryableReturnsResponse(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":{"message":"bad"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := New().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_RetriesRateLimitAndReplaysBody(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(WithBaseDelay(time.Millisecond), WithMaxRetries(3))
	req, _ := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader("payload"))

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_GivesUpWithRetryableError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(WithBaseDelay(time.Millisecond), WithMaxRetries(2))
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	resp, err := c.Do(req)
	require.Error(t, err)
	defer resp.Body.Close()

	var retryErr *RetryableError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, http.StatusServiceUnavailable, retryErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_ConservativeRetryStopsAfterTwo(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(WithConservativeDelay(time.Millisecond), WithMaxRetries(5))
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	resp, err := c.Do(req)
	require.Error(t, err)
	defer resp.Body.Close()
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(WithHeaderParser(ParseOpenAIHeaders))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)

	start := time.Now()
	_, err := c.Do(req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCalculateDelay(t *testing.T) {
	c := New(WithBaseDelay(time.Second), WithConservativeDelay(2*time.Second))

	assert.Equal(t, 7*time.Second, c.calculateDelay(SmartRetry, 0, RateLimitInfo{RetryAfter: 7 * time.Second}))
	assert.Equal(t, 1100*time.Millisecond, c.calculateDelay(SmartRetry, 0, RateLimitInfo{}))
	assert.Equal(t, 4400*time.Millisecond, c.calculateDelay(SmartRetry, 2, RateLimitInfo{}))

	assert.Equal(t, 2*time.Second, c.calculateDelay(ConservativeRetry, 0, RateLimitInfo{}))
	assert.Equal(t, 3*time.Second, c.calculateDelay(ConservativeRetry, 1, RateLimitInfo{}))
	assert.Zero(t, c.calculateDelay(ConservativeRetry, 2, RateLimitInfo{}))

	assert.Zero(t, c.calculateDelay(NoRetry, 0, RateLimitInfo{}))
}

func TestRetryableError(t *testing.T) {
	err := &RetryableError{StatusCode: 429, Message: "giving up", RetryAfter: 3 * time.Second}
	assert.Equal(t, "HTTP 429: giving up (retry after 3s)", err.Error())

	inner := errors.New("boom")
	err = &RetryableError{StatusCode: 500, Message: "x", Err: inner}
	assert.Equal(t, "HTTP 500: x", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestParseOpenAIHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "12")
	h.Set("x-ratelimit-reset-requests", "1700000000")
	h.Set("x-ratelimit-remaining-requests", "4")
	h.Set("x-ratelimit-remaining-tokens", "900")

	info := ParseOpenAIHeaders(h)
	assert.Equal(t, 12*time.Second, info.RetryAfter)
	assert.Equal(t, int64(1700000000), info.ResetTime)
	assert.Equal(t, 4, info.RequestsRemaining)
	assert.Equal(t, 900, info.TokensRemaining)

	h = http.Header{}
	h.Set("retry-after-ms", "1500")
	h.Set("Retry-After", "2")
	assert.Equal(t, 1500*time.Millisecond, ParseOpenAIHeaders(h).RetryAfter)

	assert.Zero(t, ParseOpenAIHeaders(http.Header{}).RetryAfter)
}
