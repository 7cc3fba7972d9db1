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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/binaek/cling"

	"github.com/fieldform-sh/fieldform/api"
	"github.com/fieldform-sh/fieldform/assemble"
	"github.com/fieldform-sh/fieldform/constants"
	"github.com/fieldform-sh/fieldform/intake"
	"github.com/fieldform-sh/fieldform/internal/audit"
	fieldotel "github.com/fieldform-sh/fieldform/otel"
	"github.com/fieldform-sh/fieldform/store"
	"github.com/fieldform-sh/fieldform/store/memory"
	sqlstore "github.com/fieldform-sh/fieldform/store/sql"
)

func addServeCmd(cli *cling.CLI) {
	cli.WithCommand(
		cling.NewCommand("serve", serveCmd).
			WithFlag(cling.
				NewIntCmdInput("port").
				WithDefault(8080).
				WithDescription("Port to listen on").
				AsFlag(),
			).
			WithFlag(cling.
				NewCmdSliceInput[string]("listen").
				WithDefault([]string{"local"}).
				WithDescription("Address(es) to listen on").
				AsFlag(),
			).
			WithFlag(
				cling.NewStringCmdInput("store-driver").
					WithDefault("memory").
					WithValidator(cling.NewEnumValidator("memory", "mysql", "dolt")).
					WithDescription("Persistence backend. One of: memory, mysql, dolt.").
					AsFlag().
					FromEnv([]string{constants.EnvStoreDriver}),
			).
			WithFlag(
				cling.NewStringCmdInput("store-dsn").
					WithDefault("").
					WithDescription("Data source name for the mysql/dolt store drivers").
					AsFlag().
					FromEnv([]string{constants.EnvStoreDSN}),
			).
			WithFlag(
				cling.NewIntCmdInput("audit-workers").
					WithDefault(4).
					WithDescription("Concurrent audit-log writers").
					AsFlag(),
			).
			WithFlag(
				cling.NewBoolCmdInput("otel-enabled").
					WithDefault(false).
					WithDescription("Enable OpenTelemetry tracing and metrics").
					AsFlag().
					FromEnv([]string{constants.EnvOtelEnabled}),
			).
			WithFlag(
				cling.NewStringCmdInput("otel-endpoint").
					WithDefault("http://localhost:4317").
					WithDescription("OpenTelemetry endpoint to send telemetry to").
					AsFlag().
					FromEnv([]string{constants.EnvOtelEndpoint}),
			).
			WithFlag(
				cling.NewStringCmdInput("otel-protocol").
					WithDefault("http").
					WithValidator(cling.NewEnumValidator("http")).
					WithDescription("OpenTelemetry protocol. Only http is supported.").
					AsFlag().
					FromEnv([]string{constants.EnvOtelProtocol}),
			),
	)
}

type serveCmdArgs struct {
	Port         int      `cling-name:"port"`
	Listen       []string `cling-name:"listen"`
	StoreDriver  string   `cling-name:"store-driver"`
	StoreDSN     string   `cling-name:"store-dsn"`
	AuditWorkers int      `cling-name:"audit-workers"`
	OtelEnabled  bool     `cling-name:"otel-enabled"`
	OtelEndpoint string   `cling-name:"otel-endpoint"`
	OtelProtocol string   `cling-name:"otel-protocol"`
}

func serveCmd(ctx context.Context, args []string) error {
	input := serveCmdArgs{}
	if err := cling.Hydrate(ctx, args, &input); err != nil {
		return err
	}

	otelConfig := fieldotel.Config{
		Enabled:        input.OtelEnabled,
		Endpoint:       input.OtelEndpoint,
		Protocol:       input.OtelProtocol,
		ServiceName:    constants.APPNAME,
		ServiceVersion: constants.APPVERSION,
	}

	var otelCleanup fieldotel.ShutdownFn
	var metrics *fieldotel.IntakeMetrics
	if otelConfig.Enabled {
		var err error
		otelCleanup, err = fieldotel.InitProvider(ctx, otelConfig)
		if err != nil {
			return err
		}
		defer func() {
			if otelCleanup != nil {
				_ = otelCleanup(context.WithoutCancel(ctx))
			}
		}()

		metrics, err = fieldotel.NewIntakeMetrics()
		if err != nil {
			return err
		}
	}

	s, closeStore, err := openStore(ctx, input.StoreDriver, input.StoreDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	emitter, err := audit.New(s, slog.Default(), input.AuditWorkers)
	if err != nil {
		return err
	}
	defer emitter.Close()

	orch := &intake.Orchestrator{
		Store:   s,
		Audit:   emitter,
		Log:     slog.Default(),
		Metrics: metrics,
	}
	asm := assemble.New(s, 5*time.Minute, 1024)
	orch.InvalidateResult = asm.Invalidate

	server := &api.Server{
		Store:        s,
		Orchestrator: orch,
		Assembler:    asm,
		Audit:        emitter,
		OTelConfig:   otelConfig,
		Log:          slog.Default(),
	}

	if err := server.Setup(ctx, input.Port, input.Listen); err != nil {
		return err
	}

	go server.Start(ctx)

	<-ctx.Done()

	return server.Stop(context.WithoutCancel(ctx))
}

// openStore builds the store.Store implementation named by driver,
// returning a cleanup func that closes any underlying connection
// (a no-op for the in-process memory store).
func openStore(ctx context.Context, driver, dsn string) (store.Store, func(), error) {
	switch driver {
	case "memory", "":
		return memory.New(), func() {}, nil
	case "mysql":
		s, err := sqlstore.Open(ctx, sqlstore.DriverMySQL, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("opening mysql store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "dolt":
		s, err := sqlstore.Open(ctx, sqlstore.DriverDolt, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("opening dolt store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
