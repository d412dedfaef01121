// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/go-chi/chi/v5"

	"github.com/kadirpekel/hector-samples/pkg/config"
	"github.com/kadirpekel/hector-samples/pkg/metrics"
	"github.com/kadirpekel/hector-samples/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// HTTPServer serves one agent over A2A JSON-RPC.
type HTTPServer struct {
	executor    *Executor
	taskStore   a2asrv.TaskStore
	httpMetrics *observability.HTTPMetrics

	mu          sync.RWMutex
	cfg         *config.Config
	card        *a2a.AgentCard
	cardHandler http.Handler

	server *http.Server
}

// HTTPServerOption configures the HTTP server.
type HTTPServerOption func(*HTTPServer)

// WithTaskStore sets the task store. If not set, a2a-go keeps tasks in
// memory.
func WithTaskStore(store a2asrv.TaskStore) HTTPServerOption {
	return func(s *HTTPServer) {
		s.taskStore = store
	}
}

// WithHTTPMetrics records per-route request metrics.
func WithHTTPMetrics(m *observability.HTTPMetrics) HTTPServerOption {
	return func(s *HTTPServer) {
		s.httpMetrics = m
	}
}

// NewHTTPServer creates a server for cfg backed by executor.
func NewHTTPServer(cfg *config.Config, executor *Executor, opts ...HTTPServerOption) *HTTPServer {
	s := &HTTPServer{executor: executor}
	for _, opt := range opts {
		opt(s)
	}
	s.setConfig(cfg)
	return s
}

// UpdateConfig replaces the advertised agent card. The listen address is
// fixed once the server has started.
func (s *HTTPServer) UpdateConfig(cfg *config.Config) {
	s.setConfig(cfg)
	slog.Info("Agent card updated", "name", cfg.Agent.Name, "version", cfg.Agent.Version)
}

func (s *HTTPServer) setConfig(cfg *config.Config) {
	card := BuildAgentCard(cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.card = card
	s.cardHandler = a2asrv.NewStaticAgentCardHandler(card)
}

// Card returns the agent card currently advertised.
func (s *HTTPServer) Card() *a2a.AgentCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.card
}

// Handler returns the routed HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	var handlerOpts []a2asrv.RequestHandlerOption
	if s.taskStore != nil {
		handlerOpts = append(handlerOpts, a2asrv.WithTaskStore(s.taskStore))
	}
	jsonrpc := a2asrv.NewJSONRPCHandler(a2asrv.NewHandler(s.executor, handlerOpts...))

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(instrumentMiddleware(s.httpMetrics))

	r.Post("/", jsonrpc.ServeHTTP)
	r.Get(a2asrv.WellKnownAgentCardPath, s.handleAgentCard)
	r.Get("/health", handleHealth)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	return r
}

func (s *HTTPServer) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h := s.cardHandler
	s.mu.RUnlock()
	h.ServeHTTP(w, r)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.RLock()
	addr := s.cfg.Server.Address()
	s.mu.RUnlock()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	slog.Info("HTTP server starting", "address", ln.Addr().String(), "agent_card", a2asrv.WellKnownAgentCardPath)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully stops the server, waiting at most five seconds.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	slog.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}
	return nil
}
