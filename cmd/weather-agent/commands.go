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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kadirpekel/hector-samples/pkg/aicore"
	"github.com/kadirpekel/hector-samples/pkg/backend"
	"github.com/kadirpekel/hector-samples/pkg/config"
	"github.com/kadirpekel/hector-samples/pkg/server"
	"github.com/kadirpekel/hector-samples/pkg/version"
)

// AskCmd runs the agent once and prints the answer.
type AskCmd struct {
	Question []string `arg:"" help:"Question to ask."`
}

func (c *AskCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, loader, err := loadConfig(ctx, cli.Config)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}

	env := config.EnvironmentFromOS()
	weather, err := buildAgent(ctx, backend.NewSelector(), cfg, env, modelName(cli.Model, cfg, env))
	if err != nil {
		return err
	}

	answer, err := weather.Run(ctx, strings.Join(c.Question, " "))
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

// ResolveCmd resolves the SAP AI Core deployment and prints it with the
// token redacted.
type ResolveCmd struct {
	ShowToken bool `name:"show-token" help:"Print the bearer token instead of redacting it."`
}

func (c *ResolveCmd) Run(cli *CLI) error {
	ctx := context.Background()
	env := config.EnvironmentFromOS()

	settings := aicore.SettingsFromEnvironment(env)
	if cli.Model != "" {
		settings.DeploymentName = cli.Model
	}

	resolver, err := aicore.NewResolverFromEnvironment(env)
	if err != nil {
		return err
	}
	res, err := resolver.Resolve(ctx, settings)
	if err != nil {
		return err
	}
	return printResolution(os.Stdout, settings, res, c.ShowToken)
}

func printResolution(w io.Writer, settings aicore.Settings, res *aicore.Resolution, showToken bool) error {
	token := redact(res.Token)
	if showToken {
		token = res.Token
	}
	out := map[string]string{
		"resource_group":  settings.ResourceGroup,
		"scenario_id":     settings.ScenarioID,
		"deployment_url":  res.URL,
		"deployment_name": res.DeploymentName,
		"token":           token,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// redact keeps only the first and last four characters of a token.
func redact(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// CardCmd prints the agent card.
type CardCmd struct{}

func (c *CardCmd) Run(cli *CLI) error {
	cfg, loader, err := loadConfig(context.Background(), cli.Config)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(server.BuildAgentCard(cfg))
}

// SchemaCmd prints the JSON Schema of the config file.
type SchemaCmd struct{}

func (c *SchemaCmd) Run() error {
	data, err := config.SchemaJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(version.Get())
	return nil
}
