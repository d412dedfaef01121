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

// Package openai is a Chat Completions client for OpenAI-compatible
// endpoints: OpenAI, GitHub Models, Azure OpenAI and the SAP AI Core proxy.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/hector-samples/pkg/httpclient"
	"github.com/kadirpekel/hector-samples/pkg/metrics"
	"github.com/kadirpekel/hector-samples/pkg/model"
	"github.com/kadirpekel/hector-samples/pkg/tool"
)

const tracerName = "github.com/kadirpekel/hector-samples/pkg/model/openai"

// Client implements model.LLM over the Chat Completions API.
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *httpclient.Client
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpOpts []httpclient.Option
}

// WithHTTPOptions passes options to the underlying retrying HTTP client.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(o *clientOptions) {
		o.httpOpts = append(o.httpOpts, opts...)
	}
}

// New creates a client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chat client config: %w", err)
	}
	if cfg.Flavor == "" {
		cfg.Flavor = FlavorOpenAI
	}
	if cfg.Flavor == FlavorAzure && cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAzureAPIVersion
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	httpOpts := append([]httpclient.Option{
		httpclient.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithHeaderParser(httpclient.ParseOpenAIHeaders),
	}, o.httpOpts...)

	return &Client{
		cfg:        cfg,
		endpoint:   completionsURL(cfg),
		httpClient: httpclient.New(httpOpts...),
		tracer:     otel.Tracer(tracerName),
	}, nil
}

// completionsURL builds the request URL for the flavor.
func completionsURL(cfg Config) string {
	switch {
	case cfg.Flavor != FlavorAzure:
		base := cfg.BaseURL
		if base == "" {
			base = DefaultBaseURL
		}
		return strings.TrimRight(base, "/") + "/chat/completions"
	case cfg.BaseURL != "":
		return strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions?api-version=" + url.QueryEscape(cfg.APIVersion)
	default:
		return strings.TrimRight(cfg.Endpoint, "/") + "/openai/deployments/" + url.PathEscape(cfg.Model) +
			"/chat/completions?api-version=" + url.QueryEscape(cfg.APIVersion)
	}
}

// Name returns the model id or deployment name.
func (c *Client) Name() string {
	return c.cfg.Model
}

// Provider returns the API family of the flavor.
func (c *Client) Provider() model.Provider {
	if c.cfg.Flavor == FlavorAzure {
		return model.ProviderAzureOpenAI
	}
	return model.ProviderOpenAI
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Close is a no-op; the client holds no resources.
func (c *Client) Close() error {
	return nil
}

// GenerateContent sends one completion request.
func (c *Client) GenerateContent(ctx context.Context, req *model.Request) (_ *model.Response, err error) {
	ctx, span := c.tracer.Start(ctx, "chat.completions", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("gen_ai.system", string(c.Provider())),
		attribute.String("gen_ai.request.model", c.cfg.Model),
		attribute.String("llm.backend", c.cfg.Backend),
	)
	start := time.Now()
	status := "error"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.LLMRequestDuration.WithLabelValues(c.cfg.Backend, status).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.setHeaders(ctx, httpReq); err != nil {
		return nil, err
	}

	slog.Debug("Sending chat completion request",
		"backend", c.cfg.Backend,
		"model", c.cfg.Model,
		"messages", len(req.Messages),
		"tools", len(req.Tools))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if resp != nil {
			status = strconv.Itoa(resp.StatusCode)
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out, err := parseResponse(&parsed)
	if err != nil {
		return nil, err
	}
	if out.Usage != nil {
		span.SetAttributes(
			attribute.Int("gen_ai.usage.input_tokens", out.Usage.PromptTokens),
			attribute.Int("gen_ai.usage.output_tokens", out.Usage.CompletionTokens),
		)
		metrics.LLMTokens.WithLabelValues(c.cfg.Backend, "input").Add(float64(out.Usage.PromptTokens))
		metrics.LLMTokens.WithLabelValues(c.cfg.Backend, "output").Add(float64(out.Usage.CompletionTokens))
	}
	return out, nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	switch {
	case c.cfg.Flavor != FlavorAzure:
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	case c.cfg.APIKey != "":
		req.Header.Set("api-key", c.cfg.APIKey)
	default:
		token, err := c.cfg.TokenProvider(ctx)
		if err != nil {
			return fmt.Errorf("failed to get bearer token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if c.cfg.TokenAsAPIKey {
			req.Header.Set("api-key", token)
		}
	}

	for k, v := range c.cfg.DefaultHeaders {
		req.Header.Set(k, v)
	}
	return nil
}

func (c *Client) buildRequest(req *model.Request) *chatRequest {
	out := &chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
	}
	maxTokens := c.cfg.MaxTokens
	out.MaxTokens = &maxTokens

	if cfg := req.Config; cfg != nil {
		if cfg.Temperature != nil {
			out.Temperature = cfg.Temperature
		}
		if cfg.MaxTokens != nil {
			out.MaxTokens = cfg.MaxTokens
		}
		out.Stop = cfg.Stop
	}

	if req.SystemInstruction != "" {
		out.Messages = append(out.Messages, chatMessage{Role: string(model.RoleSystem), Content: req.SystemInstruction})
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, convertMessage(m))
	}

	for _, def := range req.Tools {
		params := def.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out.Tools = append(out.Tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

func convertMessage(m model.Message) chatMessage {
	msg := chatMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		args, err := json.Marshal(tc.Args)
		if err != nil || tc.Args == nil {
			args = []byte("{}")
		}
		msg.ToolCalls = append(msg.ToolCalls, chatToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: chatFunctionCall{
				Name:      tc.Name,
				Arguments: string(args),
			},
		})
	}
	return msg
}

func parseResponse(resp *chatResponse) (*model.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}
	choice := resp.Choices[0]

	out := &model.Response{
		Message: model.Message{
			Role:    model.RoleAssistant,
			Content: choice.Message.Content,
		},
		FinishReason: model.FinishReason(choice.FinishReason),
	}

	for _, tc := range choice.Message.ToolCalls {
		call, err := parseToolCall(tc)
		if err != nil {
			return nil, err
		}
		out.Message.ToolCalls = append(out.Message.ToolCalls, call)
	}

	if resp.Usage != nil {
		out.Usage = &model.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out, nil
}

func parseToolCall(tc chatToolCall) (tool.ToolCall, error) {
	args := map[string]any{}
	if s := strings.TrimSpace(tc.Function.Arguments); s != "" {
		if err := json.Unmarshal([]byte(s), &args); err != nil {
			return tool.ToolCall{}, fmt.Errorf("invalid arguments for tool call %s (%s): %w", tc.ID, tc.Function.Name, err)
		}
	}
	return tool.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: args}, nil
}
