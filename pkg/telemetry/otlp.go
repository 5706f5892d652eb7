// Package telemetry installs the global tracer provider. Signal dispatch is
// traced through otel.Tracer; without an endpoint spans go nowhere.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/entrhq/ghostchat/pkg/config"
)

// Provider wraps the SDK tracer provider so it can be flushed on exit.
type Provider struct {
	provider *sdktrace.TracerProvider
}

// Setup exports spans to opts.Endpoint over OTLP/HTTP and installs the
// provider globally. An empty endpoint disables export and returns a nil
// Provider, whose Shutdown is a no-op.
func Setup(ctx context.Context, opts config.TelemetryOptions) (*Provider, error) {
	if opts.Endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "ghostchat"
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return &Provider{provider: provider}, nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
