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

// Package otel wires up OpenTelemetry tracing and metrics over OTLP/HTTP.
package otel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime/metrics"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config holds the OpenTelemetry configuration for the intake engine.
type Config struct {
	Enabled        bool
	Endpoint       string
	Protocol       string
	ServiceName    string
	ServiceVersion string
}

type ShutdownFn func(context.Context) error

// InitProvider initializes the trace and meter providers and returns
// a cleanup function. When !config.Enabled it returns a no-op cleanup
// so callers never need to branch on whether telemetry is live.
func InitProvider(ctx context.Context, config Config) (ShutdownFn, error) {
	if !config.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	endpointURL, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var cleanupFuncs []func(context.Context) error

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(fmt.Sprintf("%s://%s", endpointURL.Scheme, endpointURL.Host)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)
	cleanupFuncs = append(cleanupFuncs, tracerProvider.Shutdown)

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(fmt.Sprintf("%s://%s", endpointURL.Scheme, endpointURL.Host)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	cleanupFuncs = append(cleanupFuncs, meterProvider.Shutdown)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	meter := meterProvider.Meter("fieldform/runtime")
	if err := setupRuntimeMetrics(ctx, meter); err != nil {
		return nil, fmt.Errorf("failed to setup runtime metrics: %w", err)
	}

	return func(ctx context.Context) error {
		var allErr error
		for _, cleanup := range cleanupFuncs {
			if err := cleanup(ctx); err != nil {
				allErr = errors.Join(allErr, err)
			}
		}
		return allErr
	}, nil
}

var runtimeMetricMap = map[string]string{
	"memory_classes_heap_objects_bytes": "/memory/classes/heap/objects:bytes",
	"memory_classes_total_bytes":        "/memory/classes/total:bytes",
	"gc_cycles_total_gc_cycles":         "/gc/cycles/total:gc-cycles",
	"gc_heap_goal_bytes":                "/gc/heap/goal:bytes",
	"sched_goroutines_goroutines":       "/sched/goroutines:goroutines",
}

// setupRuntimeMetrics mirrors the Go runtime's own metrics into OTel
// gauges on a fixed interval rather than via the SDK's observer
// callbacks, so several values can be recorded per collection pass.
func setupRuntimeMetrics(ctx context.Context, meter metric.Meter) error {
	gauges := make(map[string]metric.Int64Gauge, len(runtimeMetricMap))
	for name := range runtimeMetricMap {
		gauge, err := meter.Int64Gauge(name)
		if err != nil {
			return fmt.Errorf("failed to create gauge for %s: %w", name, err)
		}
		gauges[name] = gauge
	}

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				descriptions := metrics.All()
				samples := make([]metrics.Sample, len(descriptions))
				for i, desc := range descriptions {
					samples[i].Name = desc.Name
				}
				metrics.Read(samples)

				for _, sample := range samples {
					for otelName, runtimeName := range runtimeMetricMap {
						if sample.Name != runtimeName {
							continue
						}
						gauge, ok := gauges[otelName]
						if !ok {
							continue
						}
						switch sample.Value.Kind() {
						case metrics.KindUint64:
							gauge.Record(ctx, int64(sample.Value.Uint64()))
						case metrics.KindFloat64:
							gauge.Record(ctx, int64(sample.Value.Float64()))
						}
						break
					}
				}
			}
		}
	}()

	return nil
}

// IntakeMetrics bundles the instruments the orchestrator records
// against on every submission (SPEC_FULL.md §6 domain-stack wiring).
type IntakeMetrics struct {
	IntakeCount    metric.Int64Counter
	IntakeDuration metric.Float64Histogram
	ActiveIntakes  metric.Int64UpDownCounter
}

// NewIntakeMetrics creates the intake-specific instrument set from the
// global meter provider.
func NewIntakeMetrics() (*IntakeMetrics, error) {
	meter := otel.Meter("fieldform/intake")

	count, err := meter.Int64Counter("intake_count",
		metric.WithDescription("number of intake submissions processed, by outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("intake_duration",
		metric.WithDescription("intake submission pipeline duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	active, err := meter.Int64UpDownCounter("active_intakes",
		metric.WithDescription("intake submissions currently in flight"))
	if err != nil {
		return nil, err
	}
	return &IntakeMetrics{IntakeCount: count, IntakeDuration: duration, ActiveIntakes: active}, nil
}
