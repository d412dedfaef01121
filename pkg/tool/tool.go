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

// Package tool defines the tools an agent can offer to a model.
package tool

import (
	"context"
	"fmt"
	"sort"
)

// Tool is the metadata every tool exposes.
type Tool interface {
	Name() string
	Description() string
}

// CallableTool is a tool that runs synchronously with JSON-like arguments.
type CallableTool interface {
	Tool

	// Call executes the tool. Args are the decoded JSON arguments sent by
	// the model.
	Call(ctx Context, args map[string]any) (map[string]any, error)

	// Schema returns the JSON schema of the arguments.
	Schema() map[string]any
}

// Context is passed to a running tool.
type Context interface {
	context.Context

	// FunctionCallID is the id the model assigned to this call.
	FunctionCallID() string
}

type callContext struct {
	context.Context
	callID string
}

func (c *callContext) FunctionCallID() string { return c.callID }

// NewContext binds a function call id to ctx.
func NewContext(ctx context.Context, callID string) Context {
	return &callContext{Context: ctx, callID: callID}
}

// Definition describes a tool to the model.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToDefinition builds the Definition of t.
func ToDefinition(t Tool) Definition {
	def := Definition{
		Name:        t.Name(),
		Description: t.Description(),
	}
	if ct, ok := t.(CallableTool); ok {
		def.Parameters = ct.Schema()
	}
	return def
}

// ToolCall is a model's request to run a tool.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is the outcome of a ToolCall, sent back to the model.
type ToolResult struct {
	ToolCallID string
	Content    string
	Error      string
}

// Set is a name-indexed collection of callable tools.
type Set struct {
	tools map[string]CallableTool
}

// NewSet builds a Set. Duplicate names are rejected.
func NewSet(tools ...CallableTool) (*Set, error) {
	s := &Set{tools: make(map[string]CallableTool, len(tools))}
	for _, t := range tools {
		if _, exists := s.tools[t.Name()]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name())
		}
		s.tools[t.Name()] = t
	}
	return s, nil
}

// Get returns the tool called name.
func (s *Set) Get(name string) (CallableTool, bool) {
	t, ok := s.tools[name]
	return t, ok
}

// Definitions returns the definitions of all tools sorted by name.
func (s *Set) Definitions() []Definition {
	defs := make([]Definition, 0, len(s.tools))
	for _, t := range s.tools {
		defs = append(defs, ToDefinition(t))
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Len returns the number of tools.
func (s *Set) Len() int {
	return len(s.tools)
}
