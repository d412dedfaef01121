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

// Package functiontool turns typed Go functions into callable tools whose
// argument schema is derived from the argument struct.
package functiontool

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/kadirpekel/hector-samples/pkg/tool"
)

// Config names and describes a function tool.
type Config struct {
	// Name is the unique identifier for this tool (required).
	Name string

	// Description is shown to the model to help it decide when to use the
	// tool (required).
	Description string
}

// New creates a tool from fn. The argument schema is reflected from Args;
// use `json` tags for names and `jsonschema` tags for descriptions and
// required fields.
func New[Args any](cfg Config, fn func(tool.Context, Args) (map[string]any, error)) (tool.CallableTool, error) {
	return NewWithValidation(cfg, fn, nil)
}

// NewWithValidation is New with a validation step that runs on the decoded
// arguments before fn.
func NewWithValidation[Args any](
	cfg Config,
	fn func(tool.Context, Args) (map[string]any, error),
	validate func(Args) error,
) (tool.CallableTool, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if cfg.Description == "" {
		return nil, fmt.Errorf("tool description is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %s: function is required", cfg.Name)
	}

	schema, err := generateSchema[Args]()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for %s: %w", cfg.Name, err)
	}

	return &functionTool[Args]{
		config:   cfg,
		fn:       fn,
		validate: validate,
		schema:   schema,
	}, nil
}

type functionTool[Args any] struct {
	config   Config
	fn       func(tool.Context, Args) (map[string]any, error)
	validate func(Args) error
	schema   map[string]any
}

func (t *functionTool[Args]) Name() string {
	return t.config.Name
}

func (t *functionTool[Args]) Description() string {
	return t.config.Description
}

func (t *functionTool[Args]) Schema() map[string]any {
	return t.schema
}

func (t *functionTool[Args]) Call(ctx tool.Context, args map[string]any) (map[string]any, error) {
	var typedArgs Args
	if err := decodeArgs(args, &typedArgs); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", t.config.Name, err)
	}

	if t.validate != nil {
		if err := t.validate(typedArgs); err != nil {
			return nil, fmt.Errorf("validation failed for %s: %w", t.config.Name, err)
		}
	}

	return t.fn(ctx, typedArgs)
}

// decodeArgs decodes model-supplied arguments into target using its json
// tag names. JSON numbers arrive as float64 and convert to integer fields.
func decodeArgs(args map[string]any, target any) error {
	if args == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

var _ tool.CallableTool = (*functionTool[struct{}])(nil)
