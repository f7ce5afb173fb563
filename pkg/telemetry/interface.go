package telemetry

import (
	"context"
	"time"
)

// Client records metrics and transactions for outgoing HTTP traffic. It is
// safe to use one client from multiple goroutines simultaneously.
type Client interface {
	Close() error

	// StartTransaction begins a non-web transaction and attaches it to the
	// returned context, so requests made with that context are recorded as
	// external segments. The returned func ends the transaction.
	StartTransaction(ctx context.Context, name string) (context.Context, func())

	Gauge(name string, value float64, tags []string)
	Count(name string, value int64, tags []string)
	Incr(name string, tags []string)
	Histogram(name string, value float64, tags []string)
	Timing(name string, value time.Duration, tags []string)
}
