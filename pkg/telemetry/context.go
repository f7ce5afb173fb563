package telemetry

import (
	"context"
)

type telemetryClientCtxKey struct{}

// Context returns a copy of the parent context in which the telemetry client
// associated with it is the one given.
func Context(ctx context.Context, client Client) context.Context {
	return context.WithValue(ctx, telemetryClientCtxKey{}, client)
}

// FromContext returns the telemetry.Client instance contained in a context
// via the usage of telemetry.Context function.
//
// If the context contains no client, then telemetry.DefaultTracer is returned.
func FromContext(ctx context.Context) Client {
	client, _ := ctx.Value(telemetryClientCtxKey{}).(Client)
	if client == nil {
		return DefaultTracer
	}
	return client
}
