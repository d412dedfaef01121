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
	"fmt"
	"log/slog"

	"github.com/kadirpekel/hector-samples/pkg/agent"
	"github.com/kadirpekel/hector-samples/pkg/backend"
	"github.com/kadirpekel/hector-samples/pkg/config"
	"github.com/kadirpekel/hector-samples/pkg/model/openai"
)

// loadConfig loads path, or the built-in defaults when path is empty. The
// returned loader is nil without a file.
func loadConfig(ctx context.Context, path string) (*config.Config, *config.Loader, error) {
	if path == "" {
		return config.Default(), nil, nil
	}
	cfg, loader, err := config.LoadConfigFile(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("Configuration loaded", "path", path)
	return cfg, loader, nil
}

// modelName picks the model: --model, then llm.model, then
// COMPLETION_DEPLOYMENT_NAME.
func modelName(flag string, cfg *config.Config, env config.Environment) string {
	if flag != "" {
		return flag
	}
	return cfg.ResolveModel(env)
}

// buildAgent selects a backend from env and wires the weather agent to it.
func buildAgent(ctx context.Context, selector *backend.Selector, cfg *config.Config, env config.Environment, model string) (*agent.Agent, error) {
	clientCfg, err := selector.CreateChatClient(ctx, model, env)
	if err != nil {
		return nil, fmt.Errorf("failed to configure chat client: %w", err)
	}
	clientCfg.Timeout = cfg.LLM.Timeout
	clientCfg.MaxRetries = cfg.LLM.MaxRetries

	slog.Debug("Chat client configured", "config", *clientCfg)

	llm, err := openai.New(*clientCfg)
	if err != nil {
		return nil, err
	}
	return agent.NewWeatherAgent(llm, cfg.Agent, cfg.LLM)
}
