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


package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg, "test")
	require.NoError(t, err)
	defer m.Shutdown(context.Background())

	m.Record(context.Background(), http.MethodGet, "/health", http.StatusOK, 20*time.Millisecond)
	m.Record(context.Background(), http.MethodGet, "/health", http.StatusOK, 30*time.Millisecond)

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "test_http_server_requests_total")
	assert.Contains(t, string(body), "test_http_server_request_duration_seconds_bucket")
	assert.Contains(t, string(body), `http_route="/health"`)
}

func TestHTTPMetrics_NilIsNoop(t *testing.T) {
	var m *HTTPMetrics
	m.Record(context.Background(), http.MethodGet, "/", http.StatusOK, time.Millisecond)
	assert.NoError(t, m.Shutdown(context.Background()))
}
