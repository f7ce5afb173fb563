package httpclient

import (
	"errors"
	"net/http"
	"time"

	"github.com/luizaranda/go-restclient/pkg/transport"
)

var (
	_defaultTransport = transport.NewPooled("restclient-default")
)

// DefaultTransport returns the default transport used by New if none is given.
//
// It may be used freely outside this package.
func DefaultTransport() *transport.PooledTransport {
	return _defaultTransport
}

// Requester exposes the http.Client.Do method, which is the minimum
// required method for executing HTTP requests.
type Requester interface {
	Do(*http.Request) (*http.Response, error)
}

// CheckRedirectFunc has the signature of http.Client.CheckRedirect.
type CheckRedirectFunc func(req *http.Request, via []*http.Request) error

// NoRedirect is a CheckRedirectFunc that returns the redirect response to the
// caller instead of following it.
func NoRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// MaxRedirects returns a CheckRedirectFunc that follows up to max redirects.
func MaxRedirects(max int) CheckRedirectFunc {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("stopped after too many redirects")
		}
		return nil
	}
}

type clientOptions struct {
	Timeout           time.Duration
	CheckRedirect     CheckRedirectFunc
	Transport         http.RoundTripper
	Decorators        []transport.RoundTripDecorator
	ReqHooks          []transport.RequestHook
	ResHooks          []transport.ResponseHook
	Cache             transport.Cache
	EnableClientTrace bool
	DisableOTel       bool
}

// Option signature for client configurable parameters.
type Option interface {
	applyClient(opts *clientOptions)
}

type optFunc func(opts *clientOptions)

func (f optFunc) applyClient(o *clientOptions) { f(o) }

// WithTransport controls the base HTTP transport to use for executing the HTTP
// requests. Use transport.NewPooled or transport.NewPooledFromTransport to
// keep track of the connection pools of the application.
func WithTransport(t http.RoundTripper) Option {
	return optFunc(func(options *clientOptions) {
		options.Transport = t
	})
}

// DisableTimeout disables the timeout for outgoing requests.
//
// Requests may still timeout if a new TCP connection is needed, as the
// timeouts of the underlying http.Transport are still in effect.
func DisableTimeout() Option { return WithTimeout(0) }

// WithTimeout controls the timeout for each request, response body read
// included. A timeout of 0 disables request timeouts and negative values are
// ignored.
func WithTimeout(t time.Duration) Option {
	return optFunc(func(options *clientOptions) {
		if t >= 0 {
			options.Timeout = t
		}
	})
}

// FollowRedirects controls whether the client should follow HTTP redirects.
// The default policy is to not follow redirects. In case follow=true is
// given, then a max of 10 redirects will be followed.
func FollowRedirects(follow bool) Option {
	return optFunc(func(options *clientOptions) {
		if follow {
			options.CheckRedirect = MaxRedirects(10)
		} else {
			options.CheckRedirect = NoRedirect
		}
	})
}

// WithDecorators adds round trip decorators between the hooks and the
// cache, in the given order.
func WithDecorators(decorators ...transport.RoundTripDecorator) Option {
	return optFunc(func(options *clientOptions) {
		options.Decorators = append(options.Decorators, decorators...)
	})
}

// WithRequestHook adds request hooks to be executed before each request.
func WithRequestHook(hooks ...transport.RequestHook) Option {
	return optFunc(func(options *clientOptions) {
		options.ReqHooks = append(options.ReqHooks, hooks...)
	})
}

// WithResponseHook adds response hooks to be executed after each round trip.
func WithResponseHook(hooks ...transport.ResponseHook) Option {
	return optFunc(func(options *clientOptions) {
		options.ResHooks = append(options.ResHooks, hooks...)
	})
}

// EnableCache enables response caching using DefaultCache as storage, unless
// WithCache was given before.
func EnableCache() Option {
	return optFunc(func(options *clientOptions) {
		if options.Cache == nil {
			options.Cache = DefaultCache
		}
	})
}

// WithCache sets the storage used for caching HTTP responses. A nil cache
// disables caching.
func WithCache(cache transport.Cache) Option {
	return optFunc(func(options *clientOptions) {
		options.Cache = cache
	})
}

// WithEnableClientTrace enables the tracing of low level metrics
// of the HTTP requests performed by the httpclient.
func WithEnableClientTrace() Option {
	return optFunc(func(options *clientOptions) {
		options.EnableClientTrace = true
	})
}

// WithoutOpenTelemetry disables the OpenTelemetry client span created for
// every round trip.
func WithoutOpenTelemetry() Option {
	return optFunc(func(options *clientOptions) {
		options.DisableOTel = true
	})
}

var (
	// DefaultTimeout is the timeout used by default when building a Client.
	DefaultTimeout = 30 * time.Second

	// DefaultCheckRedirect is the redirect strategy used by default when
	// building a Client.
	DefaultCheckRedirect = CheckRedirectFunc(NoRedirect)
)

// New builds a *http.Client which keeps TCP connections to destination servers
// and records telemetry on all executed requests.
//
// Returned client can be customized by passing options to New.
func New(opts ...Option) *http.Client {
	config := clientOptions{
		Timeout:       DefaultTimeout,
		CheckRedirect: DefaultCheckRedirect,
		Transport:     DefaultTransport(),
	}

	for _, opt := range opts {
		opt.applyClient(&config)
	}

	return &http.Client{
		Timeout:       config.Timeout,
		CheckRedirect: config.CheckRedirect,
		Transport:     roundTripper(&config),
	}
}

func roundTripper(config *clientOptions) http.RoundTripper {
	chain := transport.RoundTripChain{transport.UserAgentDecorator()}

	if len(config.ReqHooks) > 0 || len(config.ResHooks) > 0 {
		chain = append(chain, transport.HookDecorator(config.ReqHooks, config.ResHooks))
	}

	chain = append(chain, config.Decorators...)

	// The cache must see the headers set by hooks and decorators.
	if config.Cache != nil {
		chain = append(chain, transport.CacheDecorator(config.Cache))
	}
	chain = append(chain, transport.TraceDecorator(config.EnableClientTrace))

	// The OpenTelemetry span must wrap the wire call only.
	if !config.DisableOTel {
		chain = append(chain, transport.OpenTelemetryDecorator())
	}

	return chain.Apply(config.Transport)
}
