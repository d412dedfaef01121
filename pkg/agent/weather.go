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

package agent

import (
	"errors"
	"hash/fnv"
	"strings"

	"github.com/kadirpekel/hector-samples/pkg/config"
	"github.com/kadirpekel/hector-samples/pkg/model"
	"github.com/kadirpekel/hector-samples/pkg/tool"
	"github.com/kadirpekel/hector-samples/pkg/tool/functiontool"
)

// WeatherToolName is the name the weather tool is offered under.
const WeatherToolName = "get_weather"

// WeatherArgs are the arguments of the weather tool.
type WeatherArgs struct {
	Location string `json:"location" jsonschema:"required,description=The location to get the weather for"`
}

var conditions = []string{
	"sunny",
	"partly cloudy",
	"cloudy",
	"light rain",
	"showers",
	"thunderstorms",
	"foggy",
	"windy",
}

// Weather returns current-like conditions for location. The result is
// derived from the location name alone, so the same location always gets
// the same answer.
func Weather(location string) map[string]any {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(location))))
	sum := h.Sum32()

	return map[string]any{
		"location":      strings.TrimSpace(location),
		"condition":     conditions[sum%uint32(len(conditions))],
		"temperature_c": int((sum>>8)%40) - 5,
		"humidity_pct":  30 + int((sum>>16)%60),
		"wind_kph":      int((sum>>24)%45),
	}
}

// NewWeatherTool creates the get_weather tool.
func NewWeatherTool() (tool.CallableTool, error) {
	return functiontool.NewWithValidation(
		functiontool.Config{
			Name:        WeatherToolName,
			Description: "Get the current weather for a given location.",
		},
		func(_ tool.Context, args WeatherArgs) (map[string]any, error) {
			return Weather(args.Location), nil
		},
		func(args WeatherArgs) error {
			if strings.TrimSpace(args.Location) == "" {
				return errors.New("location is required")
			}
			return nil
		},
	)
}

// NewWeatherAgent builds the weather Q&A agent from the agent and LLM
// sections of the configuration.
func NewWeatherAgent(llm model.LLM, agentCfg config.AgentConfig, llmCfg config.LLMConfig) (*Agent, error) {
	weather, err := NewWeatherTool()
	if err != nil {
		return nil, err
	}
	tools, err := tool.NewSet(weather)
	if err != nil {
		return nil, err
	}

	gen := &model.GenerateConfig{Temperature: llmCfg.Temperature}
	if llmCfg.MaxTokens > 0 {
		maxTokens := llmCfg.MaxTokens
		gen.MaxTokens = &maxTokens
	}

	return New(llm, tools, Config{
		Name:          agentCfg.Name,
		Instruction:   agentCfg.Instruction,
		MaxIterations: agentCfg.MaxIterations,
		Generation:    gen,
	})
}
