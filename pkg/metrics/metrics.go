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

// Package metrics exposes Prometheus metrics for backend selection,
// deployment resolution, LLM calls and agent runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "weather_agent"

var (
	// BackendSelections counts chat client configurations by backend kind.
	BackendSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_selections_total",
			Help:      "Total number of chat client configurations produced, by backend",
		},
		[]string{"backend"},
	)

	// AICoreResolutions counts SAP AI Core deployment resolutions.
	AICoreResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "aicore_resolutions_total",
			Help:      "Total number of SAP AI Core deployment resolutions, by result",
		},
		[]string{"result"},
	)

	// LLMRequestDuration tracks chat completion latency.
	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of chat completion requests in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"backend", "status"},
	)

	// LLMTokens counts tokens reported by the backend.
	LLMTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "llm_tokens_total",
			Help:      "Total tokens reported by chat completion responses",
		},
		[]string{"backend", "direction"},
	)

	// ToolCalls counts tool invocations.
	ToolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool invocations",
		},
		[]string{"tool", "result"},
	)

	// AgentRuns counts executor runs by final task state.
	AgentRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "agent_runs_total",
			Help:      "Total number of agent runs, by final task state",
		},
		[]string{"state"},
	)
)

// Registry holds every collector of this package plus the Go and process
// collectors.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		BackendSelections,
		AICoreResolutions,
		LLMRequestDuration,
		LLMTokens,
		ToolCalls,
		AgentRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
