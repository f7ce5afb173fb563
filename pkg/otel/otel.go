// Package otel configures the global OpenTelemetry providers used by the
// spans and metrics that restclient records for every request.
//
// Without a call to Start the global no-op providers are used and
// instrumentation costs next to nothing.
package otel

import (
	"context"
	"errors"
	"fmt"
	"os"
)

const (
	_defaultAgentHost = "otel-agent"
	_defaultAgentPort = "4317"

	_otelAgentHostEnv = "OTEL_HOST"
	_otelAgentPortEnv = "OTEL_PORT"
)

// ShutdownFunc flushes and stops the providers started by Start.
type ShutdownFunc func(ctx context.Context) error

// Config configures the OTLP exporters.
type Config struct {
	// Endpoint is the "host:port" of the OTLP gRPC collector. It defaults to
	// $OTEL_HOST:$OTEL_PORT, or otel-agent:4317.
	Endpoint string

	// Secure enables TLS towards the collector.
	Secure bool

	// SampleRatio is the fraction of root spans sampled. Spans with a
	// sampled parent are always recorded.
	SampleRatio float64

	// DisableMetrics skips the meter provider and the runtime metrics.
	DisableMetrics bool
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}

	host := os.Getenv(_otelAgentHostEnv)
	if host == "" {
		host = _defaultAgentHost
	}
	port := os.Getenv(_otelAgentPortEnv)
	if port == "" {
		port = _defaultAgentPort
	}
	return fmt.Sprintf("%s:%s", host, port)
}

// Start registers the tracer provider, the propagators and, unless disabled,
// the meter provider as OpenTelemetry globals.
func Start(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	tracingShutdown, err := startTracerProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DisableMetrics {
		return tracingShutdown, nil
	}

	metricsShutdown, err := startMetricsProvider(ctx, cfg)
	if err != nil {
		_ = tracingShutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return errors.Join(tracingShutdown(ctx), metricsShutdown(ctx))
	}, nil
}
