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

// Package agent runs a single-turn tool-calling loop against a chat model.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kadirpekel/hector-samples/pkg/metrics"
	"github.com/kadirpekel/hector-samples/pkg/model"
	"github.com/kadirpekel/hector-samples/pkg/tool"
)

// DefaultMaxIterations bounds the tool loop when Config leaves it unset.
const DefaultMaxIterations = 5

// callIDPrefix marks tool call ids generated locally for models that omit
// them.
const callIDPrefix = "call_local_"

// ErrMaxIterations is returned when the model keeps requesting tools.
var ErrMaxIterations = errors.New("tool loop did not finish")

// Config configures an Agent.
type Config struct {
	Name          string
	Instruction   string
	MaxIterations int
	Generation    *model.GenerateConfig
}

// Agent answers a user message, calling tools as the model requests.
type Agent struct {
	cfg    Config
	llm    model.LLM
	tools  *tool.Set
	logger *slog.Logger
}

// New creates an Agent.
func New(llm model.LLM, tools *tool.Set, cfg Config) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("agent requires a model")
	}
	if tools == nil {
		tools, _ = tool.NewSet()
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Agent{
		cfg:    cfg,
		llm:    llm,
		tools:  tools,
		logger: slog.Default().With("agent", cfg.Name),
	}, nil
}

// Name returns the configured agent name.
func (a *Agent) Name() string {
	return a.cfg.Name
}

// Model returns the underlying chat model.
func (a *Agent) Model() model.LLM {
	return a.llm
}

// Run answers text. Each iteration is one model call followed by the tool
// calls it requested; the loop ends at the first response without tool
// calls.
func (a *Agent) Run(ctx context.Context, text string) (string, error) {
	messages := []model.Message{{Role: model.RoleUser, Content: text}}
	defs := a.tools.Definitions()

	for iteration := 0; iteration < a.cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := a.llm.GenerateContent(ctx, &model.Request{
			SystemInstruction: a.cfg.Instruction,
			Messages:          messages,
			Tools:             defs,
			Config:            a.cfg.Generation.Clone(),
		})
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}

		if len(resp.Message.ToolCalls) == 0 {
			a.logger.Debug("Agent finished", "iterations", iteration+1, "finish_reason", resp.FinishReason)
			return strings.TrimSpace(resp.Message.Content), nil
		}

		assistant := resp.Message
		assistant.Role = model.RoleAssistant
		for i := range assistant.ToolCalls {
			if assistant.ToolCalls[i].ID == "" {
				assistant.ToolCalls[i].ID = callIDPrefix + uuid.NewString()
			}
		}
		messages = append(messages, assistant)

		for _, call := range assistant.ToolCalls {
			result := a.callTool(ctx, call)
			messages = append(messages, model.Message{
				Role:       model.RoleTool,
				ToolCallID: result.ToolCallID,
				Content:    formatToolResult(result),
			})
		}
	}

	return "", fmt.Errorf("%w after %d iterations", ErrMaxIterations, a.cfg.MaxIterations)
}

// callTool runs one tool call. Failures are reported back to the model
// rather than aborting the run.
func (a *Agent) callTool(ctx context.Context, call tool.ToolCall) tool.ToolResult {
	result := tool.ToolResult{ToolCallID: call.ID}

	t, ok := a.tools.Get(call.Name)
	if !ok {
		result.Error = fmt.Sprintf("unknown tool %q", call.Name)
		metrics.ToolCalls.WithLabelValues(call.Name, "unknown").Inc()
		a.logger.Warn("Model requested unknown tool", "tool", call.Name)
		return result
	}

	out, err := t.Call(tool.NewContext(ctx, call.ID), call.Args)
	if err != nil {
		result.Error = err.Error()
		metrics.ToolCalls.WithLabelValues(call.Name, "error").Inc()
		a.logger.Warn("Tool call failed", "tool", call.Name, "error", err)
		return result
	}

	data, err := json.Marshal(out)
	if err != nil {
		result.Error = fmt.Sprintf("failed to encode result: %v", err)
		metrics.ToolCalls.WithLabelValues(call.Name, "error").Inc()
		return result
	}
	result.Content = string(data)
	metrics.ToolCalls.WithLabelValues(call.Name, "success").Inc()
	a.logger.Debug("Tool call succeeded", "tool", call.Name, "call_id", call.ID)
	return result
}

func formatToolResult(r tool.ToolResult) string {
	if r.Error != "" {
		data, _ := json.Marshal(map[string]string{"error": r.Error})
		return string(data)
	}
	if r.Content == "" || r.Content == "null" {
		return "(no output)"
	}
	return r.Content
}
