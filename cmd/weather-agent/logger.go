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
	"fmt"
	"io"
	"os"

	"github.com/kadirpekel/hector-samples/pkg/logger"
)

const (
	// LogLevelEnvVar is the environment variable name for log level
	LogLevelEnvVar = "LOG_LEVEL"
	// LogFileEnvVar is the environment variable name for log file path
	LogFileEnvVar = "LOG_FILE"
	// LogFormatEnvVar is the environment variable name for log format
	LogFormatEnvVar = "LOG_FORMAT"

	defaultLogLevel  = "info"
	defaultLogFormat = "simple"
)

type logSettings struct {
	Level  string
	File   string
	Format string
}

// resolveLogSettings applies the precedence CLI flag > env var > default.
func resolveLogSettings(level, file, format string, getenv func(string) string) logSettings {
	pick := func(flag, envVar, def string) string {
		if flag != "" {
			return flag
		}
		if v := getenv(envVar); v != "" {
			return v
		}
		return def
	}
	return logSettings{
		Level:  pick(level, LogLevelEnvVar, defaultLogLevel),
		File:   pick(file, LogFileEnvVar, ""),
		Format: pick(format, LogFormatEnvVar, defaultLogFormat),
	}
}

// initLoggerFromCLI initializes the default logger and returns a cleanup
// function for the log file, if any.
func initLoggerFromCLI(level, file, format string) (func(), error) {
	settings := resolveLogSettings(level, file, format, os.Getenv)

	lvl, err := logger.ParseLevel(settings.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var (
		output  io.Writer = os.Stderr
		cleanup func()
	)
	if settings.File != "" {
		f, closeFn, err := logger.OpenLogFile(settings.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
		cleanup = closeFn
	}

	logger.Init(lvl, output, settings.Format)
	return cleanup, nil
}
