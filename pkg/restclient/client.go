package restclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luizaranda/go-restclient/pkg/log"
	"github.com/luizaranda/go-restclient/pkg/telemetry"
	"github.com/luizaranda/go-restclient/pkg/telemetry/tracing"
	"github.com/luizaranda/go-restclient/pkg/transport"
	"github.com/luizaranda/go-restclient/pkg/transport/httpclient"
)

const (
	_rejectedMetric        = "restclient.request.rejected"
	_connectionErrorMetric = "restclient.request.connection_error"
)

const (
	_contentTypeForm = "application/x-www-form-urlencoded"
	_contentTypeText = "text/plain; charset=utf-8"
	_contentTypeJSON = "application/json"
)

type clientOptions struct {
	name             string
	logger           log.Logger
	transportOptions []transport.Option
	httpOptions      []httpclient.Option
}

// Option configures a Client.
type Option func(*clientOptions)

// WithName names the connection pool of the client, as published through
// expvar. Defaults to "restclient".
func WithName(name string) Option {
	return func(o *clientOptions) { o.name = name }
}

// WithLogger sets the logger used for requests whose context carries none.
func WithLogger(l log.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithTransportOptions tunes the underlying *http.Transport. TLS and proxy
// settings always come from the Configuration.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *clientOptions) { o.transportOptions = append(o.transportOptions, opts...) }
}

// WithHTTPClientOptions passes options to httpclient.New, e.g.
// httpclient.EnableCache.
func WithHTTPClientOptions(opts ...httpclient.Option) Option {
	return func(o *clientOptions) { o.httpOptions = append(o.httpOptions, opts...) }
}

// Client submits Requests to the API described by a Configuration. It is safe
// for concurrent use and should be closed when no longer needed.
type Client struct {
	cfg       Configuration
	tc        *TransportContext
	transport *transport.PooledTransport
	http      *http.Client
	chain     interceptorChain
	handler   ResponseHandler
	logger    log.Logger

	closed    atomic.Bool
	closeOnce sync.Once
}

// New builds a Client for cfg. It assembles the TLS and proxy settings once,
// so unreadable stores are reported here as *ConfigError.
func New(cfg Configuration, opts ...Option) (*Client, error) {
	o := clientOptions{name: "restclient"}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Host() == "" {
		return nil, &ConfigError{Field: "Host", Reason: "is required"}
	}

	tc, err := NewTransportContext(cfg)
	if err != nil {
		return nil, err
	}

	transportOptions := append([]transport.Option{
		transport.OptionTLSClientConfig(tc.TLSConfig),
		transport.OptionProxyURL(tc.ProxyURL),
	}, o.transportOptions...)
	pooled := transport.NewPooled(o.name, transportOptions...)

	httpOptions := append([]httpclient.Option{
		httpclient.WithTransport(pooled),
		httpclient.WithTimeout(cfg.RequestTimeout()),
		httpclient.FollowRedirects(true),
		httpclient.WithDecorators(transport.PreemptiveAuthDecorator(tc.preemptiveCredentials())),
	}, o.httpOptions...)

	var chain interceptorChain
	if headers := cfg.RequestHeaders(); len(headers) > 0 {
		chain = append(chain, NewHeaderInterceptor(headers...))
	}
	chain = append(chain, cfg.RequestInterceptors()...)

	return &Client{
		cfg:       cfg,
		tc:        tc,
		transport: pooled,
		http:      httpclient.New(httpOptions...),
		chain:     chain,
		handler:   cfg.ResponseHandler(),
		logger:    o.logger,
	}, nil
}

// Configuration returns the configuration the client was built with.
func (c *Client) Configuration() Configuration { return c.cfg }

// TransportContext returns the credentials, auth cache and TLS policy the
// client was built with.
func (c *Client) TransportContext() *TransportContext { return c.tc }

// Submit sends req and hands the response to the configured ResponseHandler.
//
// The URL is the configured host followed by the expanded endpoint. Headers
// and form parameters go through the interceptors first. GET parameters are
// set in the query string, replacing query values of the endpoint with the
// same name. POST and PUT send their body, and DELETE sends none.
//
// Failures to execute the request are *ConnectionError. Errors returned by
// interceptors are returned unchanged.
func (c *Client) Submit(ctx context.Context, req Request) (*Response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	switch req.method {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.method)
	}

	if c.logger != nil && log.FromContext(ctx) == nil {
		ctx = log.Context(ctx, c.logger)
	}

	endpoint, err := expandEndpoint(req.endpoint, req.pathParams)
	if err != nil {
		return nil, err
	}

	rawURL := c.cfg.Host() + endpoint
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("restclient: invalid request URL %q: %w", rawURL, err)
	}

	rc := RequestContext{Method: req.method, URL: rawURL, Endpoint: req.endpoint, ctx: ctx}

	headers, err := c.chain.headers(rc)
	if err != nil {
		telemetry.Incr(ctx, _rejectedMetric, methodTags(req))
		return nil, err
	}

	body, contentType, err := c.buildBody(target, req, rc)
	if err != nil {
		return nil, err
	}

	ctx = c.tracingContext(ctx, req)
	ctx, span := startSpan(ctx, req)
	defer span.End()

	httpReq, err := httpclient.NewRequest(ctx, string(req.method), target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("restclient: building request: %w", err)
	}
	setHeaders(httpReq, contentType, headers)
	recordRequest(span, httpReq)

	log.Debug(ctx, "executing request",
		log.String("method", string(req.method)),
		log.String("url", target.Redacted()),
		log.Stringer("body", req.body),
	)

	start := time.Now()
	res, err := c.http.Do(httpReq)
	if err != nil {
		err = &ConnectionError{Method: string(req.method), URL: target.Redacted(), Err: err}
		recordOutcome(span, nil, err)
		recordDuration(ctx, req.method, tracing.TargetID(ctx), 0, time.Since(start))
		telemetry.Incr(ctx, _connectionErrorMetric, methodTags(req))
		log.Debug(ctx, "request failed", log.Duration("elapsed", time.Since(start)), log.Err(err))
		return nil, err
	}
	defer res.Body.Close()

	r, err := c.handler.Handle(res)
	recordOutcome(span, res, err)
	recordDuration(ctx, req.method, tracing.TargetID(ctx), res.StatusCode, time.Since(start))

	log.Debug(ctx, "request completed",
		log.Int("status", res.StatusCode),
		log.Duration("elapsed", time.Since(start)),
		log.Bool("success", err == nil),
	)

	return r, err
}

// buildBody returns the payload of req. For GET requests the form
// parameters are added to the query of target instead.
func (c *Client) buildBody(target *url.URL, req Request, rc RequestContext) (any, string, error) {
	switch req.method {
	case MethodGet:
		if req.body.kind == BodyForm {
			params, err := c.chain.parameters(req.body.params, rc)
			if err != nil {
				telemetry.Incr(rc.Context(), _rejectedMetric, methodTags(req))
				return nil, "", err
			}
			setQueryParams(target, params)
		}
		return nil, "", nil

	case MethodDelete:
		return nil, "", nil
	}

	switch req.body.kind {
	case BodyForm:
		params, err := c.chain.parameters(req.body.params, rc)
		if err != nil {
			telemetry.Incr(rc.Context(), _rejectedMetric, methodTags(req))
			return nil, "", err
		}
		return encodeForm(params), _contentTypeForm, nil

	case BodyJSON:
		b, err := json.Marshal(req.body.value)
		if err != nil {
			return nil, "", fmt.Errorf("restclient: encoding JSON body: %w", err)
		}
		return b, _contentTypeJSON, nil

	case BodyText:
		return req.body.text, _contentTypeText, nil

	default:
		return "", "", nil
	}
}

func (c *Client) tracingContext(ctx context.Context, req Request) context.Context {
	ctx = tracing.WithEndpointTemplate(ctx, req.endpoint)

	targetID := req.targetID
	if targetID == "" {
		targetID, _, _ = strings.Cut(req.endpoint, "?")
	}
	return tracing.WithTargetID(ctx, targetID)
}

func methodTags(req Request) []string {
	return telemetry.Tags("method", strings.ToLower(string(req.method)))
}

// setHeaders attaches headers in order. A Content-Type produced by the
// interceptors replaces the one of the body.
func setHeaders(r *http.Request, contentType string, headers []Header) {
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}

	replacedContentType := false
	for _, h := range headers {
		if !replacedContentType && strings.EqualFold(h.Name, "Content-Type") {
			r.Header.Del("Content-Type")
			replacedContentType = true
		}
		r.Header.Add(h.Name, h.Value)
	}
}

// Close releases the idle connections of the client. Subsequent calls to
// Submit fail with ErrClientClosed. Close is idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.transport.CloseIdleConnections()
	})
	return nil
}
