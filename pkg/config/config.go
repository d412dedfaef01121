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

// Package config holds the agent server configuration.
//
// Configuration comes from two places: an optional YAML file (see Loader)
// describing the server, the agent card and generation parameters, and the
// process environment (see Environment) carrying backend credentials.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHost        = "localhost"
	DefaultPort        = 9999
	DefaultAgentName   = "Weather Q&A Agent"
	DefaultVersion     = "1.0.0"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
	DefaultLLMTimeout  = 120 * time.Second

	DefaultServiceName     = "weather-agent"
	DefaultTracingExporter = "otlp"
	DefaultOTLPEndpoint    = "localhost:4317"
)

// Config is the root configuration.
type Config struct {
	Server ServerConfig `yaml:"server,omitempty" json:"server,omitempty" jsonschema:"title=Server,description=HTTP server settings"`
	Agent  AgentConfig  `yaml:"agent,omitempty" json:"agent,omitempty" jsonschema:"title=Agent,description=Agent card and behaviour"`
	LLM    LLMConfig    `yaml:"llm,omitempty" json:"llm,omitempty" jsonschema:"title=LLM,description=Generation parameters"`

	Observability ObservabilityConfig `yaml:"observability,omitempty" json:"observability,omitempty" jsonschema:"title=Observability,description=Tracing settings"`
}

// ServerConfig configures the A2A HTTP server.
type ServerConfig struct {
	Host string `yaml:"host,omitempty" json:"host,omitempty" jsonschema:"title=Host,default=localhost"`
	Port int    `yaml:"port,omitempty" json:"port,omitempty" jsonschema:"title=Port,minimum=1,maximum=65535,default=9999"`

	// PublicURL overrides the URL advertised in the agent card.
	PublicURL string `yaml:"public_url,omitempty" json:"public_url,omitempty" jsonschema:"title=Public URL,description=URL advertised in the agent card"`
}

// Address returns host:port.
func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the URL advertised to A2A clients.
func (c ServerConfig) URL() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	return "http://" + c.Address() + "/"
}

// AgentConfig describes the served agent.
type AgentConfig struct {
	Name        string        `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"title=Name"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty" jsonschema:"title=Description"`
	Version     string        `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,default=1.0.0"`
	Instruction string        `yaml:"instruction,omitempty" json:"instruction,omitempty" jsonschema:"title=Instruction,description=System instruction"`
	Skills      []SkillConfig `yaml:"skills,omitempty" json:"skills,omitempty" jsonschema:"title=Skills"`
	Examples    []string      `yaml:"examples,omitempty" json:"examples,omitempty" jsonschema:"title=Examples"`

	// MaxIterations bounds the tool-calling loop.
	MaxIterations int `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty" jsonschema:"title=Max Iterations,minimum=1,default=5"`
}

// SkillConfig is an A2A skill advertised in the agent card.
type SkillConfig struct {
	ID          string   `yaml:"id" json:"id" jsonschema:"required"`
	Name        string   `yaml:"name" json:"name" jsonschema:"required"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Examples    []string `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// LLMConfig holds generation parameters. The backend itself is chosen from
// the environment, not from this file.
type LLMConfig struct {
	// Model is the model id or deployment name. Falls back to
	// COMPLETION_DEPLOYMENT_NAME.
	Model       string        `yaml:"model,omitempty" json:"model,omitempty" jsonschema:"title=Model"`
	Temperature *float64      `yaml:"temperature,omitempty" json:"temperature,omitempty" jsonschema:"title=Temperature,minimum=0,maximum=2,default=0.7"`
	MaxTokens   int           `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty" jsonschema:"title=Max Tokens,minimum=1,default=1024"`
	Timeout     time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"title=Timeout,type=string,default=120s"`
	MaxRetries  int           `yaml:"max_retries,omitempty" json:"max_retries,omitempty" jsonschema:"title=Max Retries,minimum=0"`
}

// ObservabilityConfig configures tracing. Prometheus metrics are always
// served at /metrics.
type ObservabilityConfig struct {
	Tracing TracingConfig `yaml:"tracing,omitempty" json:"tracing,omitempty" jsonschema:"title=Tracing"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled bool `yaml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"title=Enabled,default=false"`

	// Exporter is "otlp" (gRPC) or "stdout".
	Exporter string `yaml:"exporter,omitempty" json:"exporter,omitempty" jsonschema:"title=Exporter,enum=otlp,enum=stdout,default=otlp"`

	// Endpoint is the OTLP collector address, host:port.
	Endpoint     string            `yaml:"endpoint,omitempty" json:"endpoint,omitempty" jsonschema:"title=Endpoint,default=localhost:4317"`
	SamplingRate float64           `yaml:"sampling_rate,omitempty" json:"sampling_rate,omitempty" jsonschema:"title=Sampling Rate,minimum=0,maximum=1,default=1"`
	ServiceName  string            `yaml:"service_name,omitempty" json:"service_name,omitempty" jsonschema:"title=Service Name,default=weather-agent"`
	Insecure     *bool             `yaml:"insecure,omitempty" json:"insecure,omitempty" jsonschema:"title=Insecure,default=true"`
	Headers      map[string]string `yaml:"headers,omitempty" json:"headers,omitempty" jsonschema:"title=Headers"`
	Timeout      time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"title=Timeout,type=string,default=10s"`
}

// IsInsecure reports whether the OTLP connection skips TLS.
func (c TracingConfig) IsInsecure() bool {
	return c.Insecure == nil || *c.Insecure
}

func (c *TracingConfig) setDefaults() {
	if c.Exporter == "" {
		c.Exporter = DefaultTracingExporter
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultOTLPEndpoint
	}
	if c.SamplingRate == 0 {
		c.SamplingRate = 1
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Agent.Name == "" {
		c.Agent.Name = DefaultAgentName
	}
	if c.Agent.Description == "" {
		c.Agent.Description = "A simple weather question answering agent that uses a tool " +
			"to respond with current-like conditions for requested locations."
	}
	if c.Agent.Version == "" {
		c.Agent.Version = DefaultVersion
	}
	if c.Agent.Instruction == "" {
		c.Agent.Instruction = "You are a helpful weather assistant. " +
			"When asked about the weather, call the get_weather tool for every location mentioned " +
			"and answer concisely using its results."
	}
	if len(c.Agent.Skills) == 0 {
		c.Agent.Skills = []SkillConfig{{
			ID:          "answer_weather_questions",
			Name:        "Answer questions about the weather",
			Description: "The agent can answer simple questions about the weather for given locations using a weather tool.",
			Tags:        []string{"weather", "q&a"},
			Examples: []string{
				"What is the weather in Amsterdam?",
				"What is the weather like in Paris and Berlin?",
			},
		}}
	}
	if len(c.Agent.Examples) == 0 {
		c.Agent.Examples = []string{
			"What is the weather in Amsterdam?",
			"What is the weather like in Paris and Berlin?",
		}
	}
	if c.Agent.MaxIterations == 0 {
		c.Agent.MaxIterations = 5
	}

	if c.LLM.Temperature == nil {
		t := DefaultTemperature
		c.LLM.Temperature = &t
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = DefaultMaxTokens
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = DefaultLLMTimeout
	}

	c.Observability.Tracing.setDefaults()
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Agent.MaxIterations < 1 {
		errs = append(errs, "agent.max_iterations must be >= 1")
	}
	for i, s := range c.Agent.Skills {
		if s.ID == "" || s.Name == "" {
			errs = append(errs, fmt.Sprintf("agent.skills[%d] requires id and name", i))
		}
	}
	if t := c.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, "llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, "llm.max_tokens must be positive")
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, "llm.max_retries must be >= 0")
	}
	if t := c.Observability.Tracing; t.Enabled {
		if t.Exporter != "otlp" && t.Exporter != "stdout" {
			errs = append(errs, fmt.Sprintf("observability.tracing.exporter %q must be otlp or stdout", t.Exporter))
		}
		if t.SamplingRate < 0 || t.SamplingRate > 1 {
			errs = append(errs, "observability.tracing.sampling_rate must be between 0 and 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ResolveModel returns the configured model, falling back to the
// COMPLETION_DEPLOYMENT_NAME value of env.
func (c *Config) ResolveModel(env Environment) string {
	if m := strings.TrimSpace(c.LLM.Model); m != "" {
		return m
	}
	return env.CompletionDeploymentName
}
