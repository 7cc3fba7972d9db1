// Copyright 2026 The Fieldform Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldform-sh/fieldform/cmd"
	"github.com/fieldform-sh/fieldform/constants"
)

var version = constants.APPVERSION

func main() {
	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, os.Kill)
	defer stop()

	exitCode := 0

	logger := setupDefaultLogger()
	slog.SetDefault(logger)

	cli := cmd.Setup(ctx, version)
	if err := cmd.Execute(ctx, cli, os.Args); err != nil {
		fmt.Printf("Error: %s\n", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}

func setupDefaultLogger() *slog.Logger {
	logLevel := slog.LevelVar{}
	if _, ok := os.LookupEnv(constants.EnvDebug); ok {
		os.Setenv(constants.EnvLogLevel, "DEBUG")
	}
	switch strings.ToUpper(os.Getenv(constants.EnvLogLevel)) { // DEBUG, INFO, WARN, ERROR
	case "DEBUG":
		logLevel.Set(slog.LevelDebug)
	case "INFO":
		logLevel.Set(slog.LevelInfo)
	case "WARN":
		logLevel.Set(slog.LevelWarn)
	case "ERROR":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
	}

	attrs := []slog.Attr{
		slog.String("app", constants.APPNAME),
		slog.String("version", version),

		// generate a unique instance id so logs from separate instances can be told apart
		slog.String("instance", uuid.NewString()),
	}
	if _, ok := os.LookupEnv(constants.EnvDebug); ok {
		attrs = append(
			attrs,
			slog.Bool("debug", true),
			slog.Any("args", os.Args),
		)
		if exec, err := os.Executable(); err == nil {
			attrs = append(attrs, slog.String("executable", exec))
		}
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     &logLevel,
	}).WithAttrs(attrs)

	return slog.New(logHandler)
}
