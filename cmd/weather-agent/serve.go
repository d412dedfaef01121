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


package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/hector-samples/pkg/backend"
	"github.com/kadirpekel/hector-samples/pkg/config"
	"github.com/kadirpekel/hector-samples/pkg/metrics"
	"github.com/kadirpekel/hector-samples/pkg/observability"
	"github.com/kadirpekel/hector-samples/pkg/server"
	"github.com/kadirpekel/hector-samples/pkg/version"
)

// ServeCmd starts the A2A server.
type ServeCmd struct {
	Host  string `help:"Host to bind (overrides server.host)."`
	Port  int    `help:"Port to listen on (overrides server.port)."`
	Watch bool   `help:"Watch the config file and reload on change."`
}

func (c *ServeCmd) apply(cfg *config.Config) {
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, loader, err := loadConfig(ctx, cli.Config)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdownTracer, err := observability.InitTracer(ctx, cfg.Observability.Tracing,
		observability.WithServiceVersion(version.Get().Version))
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			slog.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	env := config.EnvironmentFromOS()
	selector := backend.NewSelector()

	weather, err := buildAgent(ctx, selector, cfg, env, modelName(cli.Model, cfg, env))
	if err != nil {
		return err
	}

	httpMetrics, err := observability.NewHTTPMetrics(metrics.Registry, metrics.Namespace)
	if err != nil {
		return err
	}
	defer httpMetrics.Shutdown(context.Background())

	executor := server.NewExecutor(weather)
	srv := server.NewHTTPServer(cfg, executor, server.WithHTTPMetrics(httpMetrics))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})

	if c.Watch && loader != nil {
		loader.SetOnChange(func(next *config.Config) {
			c.apply(next)
			rebuilt, err := buildAgent(gctx, selector, next, env, modelName(cli.Model, next, env))
			if err != nil {
				slog.Error("Failed to rebuild agent, keeping previous one", "error", err)
				return
			}
			executor.SetRunner(rebuilt)
			srv.UpdateConfig(next)
		})
		g.Go(func() error {
			err := loader.Watch(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		slog.Info("Watching config for changes", "path", cli.Config)
	}

	card := srv.Card()
	fmt.Printf("\nWeather agent ready: %s\n", card.Name)
	fmt.Printf("   JSON-RPC:    %s\n", card.URL)
	fmt.Printf("   Agent Card:  http://%s/.well-known/agent-card.json\n", cfg.Server.Address())
	fmt.Printf("   Health:      http://%s/health\n", cfg.Server.Address())
	fmt.Printf("   Metrics:     http://%s/metrics\n\n", cfg.Server.Address())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Shutdown complete")
	return nil
}
