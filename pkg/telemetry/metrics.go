package telemetry

import (
	"context"
	"time"
)

// Incr counts one occurrence of name on the client carried by ctx.
func Incr(ctx context.Context, name string, tags []string) {
	FromContext(ctx).Incr(name, tags)
}

// Timing records a duration on the client carried by ctx.
func Timing(ctx context.Context, name string, value time.Duration, tags []string) {
	FromContext(ctx).Timing(name, value, tags)
}
