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


// Package server exposes the weather agent over the A2A protocol.
//
// Executor adapts an agent to a2asrv.AgentExecutor. HTTPServer mounts the
// JSON-RPC handler next to the agent card, health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"

	"github.com/kadirpekel/hector-samples/pkg/metrics"
)

// errNoMessage is reported when a request carries no message.
var errNoMessage = errors.New("message not provided")

// errNoText is reported when a message has no text parts.
var errNoText = errors.New("message has no text content")

// Runner answers a single user message.
type Runner interface {
	Run(ctx context.Context, text string) (string, error)
}

// Executor implements a2asrv.AgentExecutor on top of a Runner.
//
// Event sequence:
//   - New task: TaskStateSubmitted
//   - Before the run: TaskStateWorking
//   - On success: one artifact with the answer (LastChunk=true), then a final
//     TaskStateCompleted
//   - On failure: a final TaskStateFailed carrying the error text
type Executor struct {
	mu     sync.RWMutex
	runner Runner
}

// NewExecutor creates an executor for runner.
func NewExecutor(runner Runner) *Executor {
	return &Executor{runner: runner}
}

// SetRunner swaps the runner used by subsequent requests.
func (e *Executor) SetRunner(runner Runner) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runner = runner
}

func (e *Executor) current() Runner {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.runner
}

// Execute implements a2asrv.AgentExecutor.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	if reqCtx.StoredTask == nil {
		if err := queue.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateSubmitted, nil)); err != nil {
			return err
		}
	}

	text, err := messageText(reqCtx.Message)
	if err != nil {
		return e.fail(ctx, reqCtx, queue, err)
	}

	if err := queue.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, nil)); err != nil {
		return err
	}

	slog.Debug("Executing agent run", "task_id", reqCtx.TaskID, "context_id", reqCtx.ContextID)

	answer, err := e.current().Run(ctx, text)
	if err != nil {
		return e.fail(ctx, reqCtx, queue, err)
	}

	artifact := a2a.NewArtifactEvent(reqCtx, a2a.TextPart{Text: answer})
	artifact.LastChunk = true
	if err := queue.Write(ctx, artifact); err != nil {
		return err
	}

	completed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, nil)
	completed.Final = true
	if err := queue.Write(ctx, completed); err != nil {
		return err
	}
	metrics.AgentRuns.WithLabelValues(string(a2a.TaskStateCompleted)).Inc()
	return nil
}

// Cancel implements a2asrv.AgentExecutor.
func (e *Executor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCanceled, nil)
	event.Final = true
	if err := queue.Write(ctx, event); err != nil {
		return err
	}
	metrics.AgentRuns.WithLabelValues(string(a2a.TaskStateCanceled)).Inc()
	return nil
}

// fail writes a final failed status. The run error is reported through the
// task, not returned.
func (e *Executor) fail(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue, cause error) error {
	slog.Warn("Agent run failed", "task_id", reqCtx.TaskID, "error", cause)

	msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: cause.Error()})
	event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateFailed, msg)
	event.Final = true
	if err := queue.Write(ctx, event); err != nil {
		return err
	}
	metrics.AgentRuns.WithLabelValues(string(a2a.TaskStateFailed)).Inc()
	return nil
}

// messageText joins the text parts of msg.
func messageText(msg *a2a.Message) (string, error) {
	if msg == nil {
		return "", errNoMessage
	}

	var texts []string
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case a2a.TextPart:
			texts = append(texts, p.Text)
		case *a2a.TextPart:
			texts = append(texts, p.Text)
		}
	}

	text := strings.TrimSpace(strings.Join(texts, "\n"))
	if text == "" {
		return "", errNoText
	}
	return text, nil
}

var _ a2asrv.AgentExecutor = (*Executor)(nil)
