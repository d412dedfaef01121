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

// Package model defines the chat model abstraction used by the agent.
package model

import (
	"context"

	"github.com/kadirpekel/hector-samples/pkg/tool"
)

// LLM is a chat model.
type LLM interface {
	// Name returns the model id or deployment name.
	Name() string

	// Provider returns the API family the model is reached through.
	Provider() Provider

	// GenerateContent runs one completion over the conversation in req.
	GenerateContent(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

// Provider is an API family.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderAzureOpenAI Provider = "azure-openai"
)

// Role of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tools.
	ToolCalls []tool.ToolCall

	// ToolCallID links a RoleTool message to the call it answers.
	ToolCallID string
}

// Request is a completion request.
type Request struct {
	// SystemInstruction is sent as a leading system message when set.
	SystemInstruction string

	Messages []Message
	Tools    []tool.Definition
	Config   *GenerateConfig
}

// GenerateConfig overrides client-level generation parameters.
type GenerateConfig struct {
	Temperature *float64
	MaxTokens   *int
	Stop        []string
}

// Clone returns a deep copy.
func (c *GenerateConfig) Clone() *GenerateConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Temperature != nil {
		v := *c.Temperature
		clone.Temperature = &v
	}
	if c.MaxTokens != nil {
		v := *c.MaxTokens
		clone.MaxTokens = &v
	}
	if c.Stop != nil {
		clone.Stop = append([]string(nil), c.Stop...)
	}
	return &clone
}

// FinishReason reports why generation stopped.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Response is a completed generation.
type Response struct {
	Message      Message
	FinishReason FinishReason
	Usage        *Usage
}

// Usage is token accounting reported by the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
