package telemetry

import (
	"context"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/newrelic/go-agent/v3/newrelic"
)

var (
	_defaultBufferLen = 500
	_defaultTimeout   = 200 * time.Millisecond
	_defaultRate      = 1.0
	_shutdownTimeout  = 5 * time.Second
)

// DefaultTracer is used when a context carries no telemetry.Client. It
// discards everything unless replaced.
var DefaultTracer = NewNoOpClient()

type client struct {
	nrApp  *newrelic.Application
	statsd statsd.ClientInterface
}

var _ Client = (*client)(nil)

// Config contains attributes required by NewClient to bootstrap itself.
type Config struct {
	// ApplicationName is the name that will be shown on NewRelic.
	ApplicationName string

	// NewRelicLicense identifies the NewRelic account. When empty the NewRelic
	// agent is created disabled.
	NewRelicLicense string

	// DatadogAddress is the address of the datadog agent to which statsd must
	// connect to. When empty metrics are discarded.
	DatadogAddress string
}

// NewClient returns a new client connected to all configured providers.
func NewClient(cfg Config) (Client, error) {
	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigEnabled(cfg.NewRelicLicense != ""),
		newrelic.ConfigLicense(cfg.NewRelicLicense),
		newrelic.ConfigAppName(cfg.ApplicationName),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigFromEnvironment(),
	)
	if err != nil {
		return nil, err
	}

	var s statsd.ClientInterface = &statsd.NoOpClient{}
	if cfg.DatadogAddress != "" {
		s, err = statsd.New(cfg.DatadogAddress,
			statsd.WithMaxMessagesPerPayload(_defaultBufferLen),
			statsd.WithWriteTimeout(_defaultTimeout),
		)
		if err != nil {
			return nil, err
		}
	}

	return &client{
		nrApp:  nrApp,
		statsd: s,
	}, nil
}

// NewNoOpClient is a telemetry client that does nothing. Useful in tests.
func NewNoOpClient() Client {
	nrApp, _ := newrelic.NewApplication(newrelic.ConfigEnabled(false))
	return &client{
		statsd: &statsd.NoOpClient{},
		nrApp:  nrApp,
	}
}

// Close flushes buffered metrics and shuts the NewRelic agent down.
func (c *client) Close() error {
	c.nrApp.Shutdown(_shutdownTimeout)
	return c.statsd.Close()
}

func (c *client) StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	if tx := newrelic.FromContext(ctx); tx != nil {
		return ctx, func() {}
	}

	tx := c.nrApp.StartTransaction(name)
	return Context(newrelic.NewContext(ctx, tx), c), tx.End
}

func (c *client) Gauge(name string, value float64, tags []string) {
	_ = c.statsd.Gauge(name, value, tags, _defaultRate)
}

func (c *client) Count(name string, value int64, tags []string) {
	_ = c.statsd.Count(name, value, tags, _defaultRate)
}

func (c *client) Incr(name string, tags []string) {
	_ = c.statsd.Incr(name, tags, _defaultRate)
}

func (c *client) Histogram(name string, value float64, tags []string) {
	_ = c.statsd.Histogram(name, value, tags, _defaultRate)
}

func (c *client) Timing(name string, value time.Duration, tags []string) {
	_ = c.statsd.Timing(name, value, tags, _defaultRate)
}
