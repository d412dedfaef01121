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


// Command weather-agent serves a weather Q&A agent over A2A.
//
// Usage:
//
//	weather-agent serve --port 9999
//	weather-agent ask "What is the weather in Amsterdam?"
//	weather-agent resolve --model gpt-4o
//	weather-agent card --config agent.yaml
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/hector-samples/pkg/config"
)

// CLI defines the command-line interface.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Start the A2A server."`
	Ask     AskCmd     `cmd:"" help:"Ask the agent a single question."`
	Resolve ResolveCmd `cmd:"" help:"Resolve the SAP AI Core deployment."`
	Card    CardCmd    `cmd:"" help:"Print the agent card."`
	Schema  SchemaCmd  `cmd:"" help:"Print the JSON Schema of the config file."`
	Version VersionCmd `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	Model     string `short:"m" help:"Model or deployment name (defaults to COMPLETION_DEPLOYMENT_NAME)."`
	LogLevel  string `help:"Log level (debug, info, warn, error)."`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose)."`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("weather-agent"),
		kong.Description("Weather Q&A agent over A2A"),
		kong.UsageOnError(),
	)

	if err := config.LoadDotEnvForConfig(cli.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
