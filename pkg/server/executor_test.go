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


package server

import (
	"context"
	"errors"
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/hector-samples/pkg/metrics"
)

// recordingQueue captures written events.
type recordingQueue struct {
	events []a2a.Event
}

func (q *recordingQueue) Write(_ context.Context, event a2a.Event) error {
	q.events = append(q.events, event)
	return nil
}

func (q *recordingQueue) Read(context.Context) (a2a.Event, error) {
	return nil, errors.New("not readable")
}

func (q *recordingQueue) Close() error { return nil }

type runnerFunc func(ctx context.Context, text string) (string, error)

func (f runnerFunc) Run(ctx context.Context, text string) (string, error) { return f(ctx, text) }

func newRequest(parts ...a2a.Part) *a2asrv.RequestContext {
	return &a2asrv.RequestContext{
		Message:   a2a.NewMessage(a2a.MessageRoleUser, parts...),
		TaskID:    a2a.NewTaskID(),
		ContextID: a2a.NewContextID(),
	}
}

func statusStates(t *testing.T, events []a2a.Event) []a2a.TaskState {
	t.Helper()
	var states []a2a.TaskState
	for _, ev := range events {
		if status, ok := ev.(*a2a.TaskStatusUpdateEvent); ok {
			states = append(states, status.Status.State)
		}
	}
	return states
}

func TestExecute_Success(t *testing.T) {
	var got string
	exec := NewExecutor(runnerFunc(func(_ context.Context, text string) (string, error) {
		got = text
		return "Sunny in Amsterdam.", nil
	}))
	q := &recordingQueue{}
	before := testutil.ToFloat64(metrics.AgentRuns.WithLabelValues(string(a2a.TaskStateCompleted)))

	err := exec.Execute(context.Background(), newRequest(a2a.TextPart{Text: "Weather in Amsterdam?"}), q)
	require.NoError(t, err)

	assert.Equal(t, "Weather in Amsterdam?", got)
	require.Len(t, q.events, 4)
	assert.Equal(t, []a2a.TaskState{a2a.TaskStateSubmitted, a2a.TaskStateWorking, a2a.TaskStateCompleted}, statusStates(t, q.events))

	artifact, ok := q.events[2].(*a2a.TaskArtifactUpdateEvent)
	require.True(t, ok, "third event should be the artifact")
	assert.True(t, artifact.LastChunk)
	require.Len(t, artifact.Artifact.Parts, 1)
	assert.Equal(t, "Sunny in Amsterdam.", artifact.Artifact.Parts[0].(a2a.TextPart).Text)

	final, ok := q.events[3].(*a2a.TaskStatusUpdateEvent)
	require.True(t, ok)
	assert.True(t, final.Final)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AgentRuns.WithLabelValues(string(a2a.TaskStateCompleted))))
}

func TestExecute_ExistingTaskSkipsSubmitted(t *testing.T) {
	exec := NewExecutor(runnerFunc(func(context.Context, string) (string, error) { return "ok", nil }))
	q := &recordingQueue{}
	req := newRequest(a2a.TextPart{Text: "again"})
	req.StoredTask = &a2a.Task{ID: req.TaskID, ContextID: req.ContextID}

	require.NoError(t, exec.Execute(context.Background(), req, q))
	assert.Equal(t, []a2a.TaskState{a2a.TaskStateWorking, a2a.TaskStateCompleted}, statusStates(t, q.events))
}

func TestExecute_JoinsTextParts(t *testing.T) {
	var got string
	exec := NewExecutor(runnerFunc(func(_ context.Context, text string) (string, error) {
		got = text
		return "ok", nil
	}))

	err := exec.Execute(context.Background(), newRequest(a2a.TextPart{Text: "Paris"}, a2a.TextPart{Text: "Berlin"}), &recordingQueue{})
	require.NoError(t, err)
	assert.Equal(t, "Paris\nBerlin", got)
}

func TestExecute_RunErrorEmitsFailed(t *testing.T) {
	exec := NewExecutor(runnerFunc(func(context.Context, string) (string, error) {
		return "", errors.New("backend unavailable")
	}))
	q := &recordingQueue{}

	require.NoError(t, exec.Execute(context.Background(), newRequest(a2a.TextPart{Text: "hi"}), q))

	assert.Equal(t, []a2a.TaskState{a2a.TaskStateSubmitted, a2a.TaskStateWorking, a2a.TaskStateFailed}, statusStates(t, q.events))
	failed := q.events[len(q.events)-1].(*a2a.TaskStatusUpdateEvent)
	assert.True(t, failed.Final)
	require.NotNil(t, failed.Status.Message)
	require.Len(t, failed.Status.Message.Parts, 1)
	assert.Equal(t, "backend unavailable", failed.Status.Message.Parts[0].(a2a.TextPart).Text)
}

func TestExecute_EmptyMessageFails(t *testing.T) {
	called := false
	exec := NewExecutor(runnerFunc(func(context.Context, string) (string, error) {
		called = true
		return "", nil
	}))
	q := &recordingQueue{}

	require.NoError(t, exec.Execute(context.Background(), newRequest(a2a.TextPart{Text: "   "}), q))

	assert.False(t, called)
	assert.Equal(t, []a2a.TaskState{a2a.TaskStateSubmitted, a2a.TaskStateFailed}, statusStates(t, q.events))
}

func TestCancel(t *testing.T) {
	exec := NewExecutor(runnerFunc(func(context.Context, string) (string, error) { return "", nil }))
	q := &recordingQueue{}

	require.NoError(t, exec.Cancel(context.Background(), newRequest(), q))

	require.Len(t, q.events, 1)
	ev := q.events[0].(*a2a.TaskStatusUpdateEvent)
	assert.Equal(t, a2a.TaskStateCanceled, ev.Status.State)
	assert.True(t, ev.Final)
}

func TestSetRunner(t *testing.T) {
	exec := NewExecutor(runnerFunc(func(context.Context, string) (string, error) { return "old", nil }))
	exec.SetRunner(runnerFunc(func(context.Context, string) (string, error) { return "new", nil }))
	q := &recordingQueue{}

	require.NoError(t, exec.Execute(context.Background(), newRequest(a2a.TextPart{Text: "hi"}), q))
	artifact := q.events[2].(*a2a.TaskArtifactUpdateEvent)
	assert.Equal(t, "new", artifact.Artifact.Parts[0].(a2a.TextPart).Text)
}
