// Package otel wires opt-in OpenTelemetry tracing for service entrypoints.
package otel

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownFunc flushes pending spans. Callers defer it after a successful
// Setup.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// enabled reports whether tracing should be wired, and the OTLP endpoint to
// use. Tracing is opt-in: an empty STEWARD_OTEL_ENDPOINT or an explicit
// STEWARD_OTEL_ENABLED=false leaves the global provider untouched.
func enabled() (string, bool) {
	if strings.EqualFold(os.Getenv("STEWARD_OTEL_ENABLED"), "false") {
		return "", false
	}
	endpoint := os.Getenv("STEWARD_OTEL_ENDPOINT")
	return endpoint, endpoint != ""
}

// Setup initialises OpenTelemetry tracing for the given service and registers
// the global tracer provider and propagator. When tracing is disabled it
// returns a no-op shutdown function.
func Setup(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	endpoint, ok := enabled()
	if !ok {
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noopShutdown, fmt.Errorf("create otlp exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noopShutdown, fmt.Errorf("build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider.Shutdown, nil
}
