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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/hector-samples/pkg/aicore"
	"github.com/kadirpekel/hector-samples/pkg/config"
)

func TestResolveLogSettings(t *testing.T) {
	env := map[string]string{LogLevelEnvVar: "debug", LogFormatEnvVar: "verbose"}
	getenv := func(k string) string { return env[k] }

	got := resolveLogSettings("", "", "", getenv)
	assert.Equal(t, logSettings{Level: "debug", Format: "verbose"}, got)

	got = resolveLogSettings("warn", "agent.log", "simple", getenv)
	assert.Equal(t, logSettings{Level: "warn", File: "agent.log", Format: "simple"}, got)

	got = resolveLogSettings("", "", "", func(string) string { return "" })
	assert.Equal(t, logSettings{Level: "info", Format: "simple"}, got)
}

func TestModelName(t *testing.T) {
	env := config.EnvironmentFrom(config.MapLookup(map[string]string{
		config.EnvCompletionDeploymentName: "env-model",
	}))
	cfg := config.Default()

	assert.Equal(t, "env-model", modelName("", cfg, env))

	cfg.LLM.Model = "file-model"
	assert.Equal(t, "file-model", modelName("", cfg, env))
	assert.Equal(t, "flag-model", modelName("flag-model", cfg, env))
}

func TestLoadConfig(t *testing.T) {
	cfg, loader, err := loadConfig(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, loader)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)

	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8181\nagent:\n  name: Test Agent\n"), 0o600))

	cfg, loader, err = loadConfig(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, loader)
	defer loader.Close()
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, "Test Agent", cfg.Agent.Name)
}

func TestServeCmd_Apply(t *testing.T) {
	cfg := config.Default()
	(&ServeCmd{}).apply(cfg)
	assert.Equal(t, config.DefaultHost, cfg.Server.Host)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)

	(&ServeCmd{Host: "0.0.0.0", Port: 8080}).apply(cfg)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "", redact(""))
	assert.Equal(t, "*****", redact("short"))
	assert.Equal(t, "Bear...wxyz", redact("Bearer abcdefghijklmnopqrstuvwxyz"))
}

func TestPrintResolution(t *testing.T) {
	settings := aicore.SettingsFromEnvironment(config.Environment{})
	res := &aicore.Resolution{
		URL:            "https://x/v2/inference/deployments/d1",
		DeploymentName: "d1",
		Token:          "Bearer abcdefghijklmnop",
	}

	var buf bytes.Buffer
	require.NoError(t, printResolution(&buf, settings, res, false))

	var out map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "default", out["resource_group"])
	assert.Equal(t, "foundation-models", out["scenario_id"])
	assert.Equal(t, "d1", out["deployment_name"])
	assert.Equal(t, "Bear...mnop", out["token"])
	assert.NotContains(t, buf.String(), "abcdefghijklmnop")

	buf.Reset()
	require.NoError(t, printResolution(&buf, settings, res, true))
	assert.Contains(t, buf.String(), "Bearer abcdefghijklmnop")
}

func TestCLI_Parse(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("weather-agent"))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"--model", "gpt-4o", "serve", "--port", "8080", "--watch"})
	require.NoError(t, err)
	assert.Equal(t, "serve", ctx.Command())
	assert.Equal(t, "gpt-4o", cli.Model)
	assert.Equal(t, 8080, cli.Serve.Port)
	assert.True(t, cli.Serve.Watch)

	ctx, err = parser.Parse([]string{"ask", "weather", "in", "Paris?"})
	require.NoError(t, err)
	assert.Equal(t, "ask <question>", ctx.Command())
	assert.Equal(t, []string{"weather", "in", "Paris?"}, cli.Ask.Question)
}
