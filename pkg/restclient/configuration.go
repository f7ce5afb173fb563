package restclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/luizaranda/go-restclient/pkg/transport"
)

// DefaultRequestTimeout is the request timeout of a Configuration that does
// not set one.
const DefaultRequestTimeout = 300 * time.Second

const redacted = "<redacted>"

// Store locates a trust store or key store file and the password that
// protects it.
type Store struct {
	Path     string
	Password string
}

// Configuration holds the settings of a Client. It is created by a
// ConfigurationBuilder and never changes afterwards; getters return copies.
type Configuration struct {
	host            string
	requestTimeout  time.Duration
	basicAuth       transport.Credentials
	proxy           *ProxyConfiguration
	insecureSSL     bool
	trustStore      Store
	keyStore        Store
	headers         []Header
	interceptors    []Interceptor
	responseHandler ResponseHandler
}

// Host returns the normalized API host, always with an http or https scheme.
func (c Configuration) Host() string { return c.host }

// RequestTimeout returns the timeout of a whole request, body read included.
// Zero means no timeout.
func (c Configuration) RequestTimeout() time.Duration { return c.requestTimeout }

// BasicAuth returns the credentials sent to the API host, and whether basic
// auth is enabled.
func (c Configuration) BasicAuth() (username, password string, ok bool) {
	return c.basicAuth.Username, c.basicAuth.Password, c.basicAuth.Username != ""
}

// Proxy returns the proxy settings, if any.
func (c Configuration) Proxy() (ProxyConfiguration, bool) {
	if c.proxy == nil {
		return ProxyConfiguration{}, false
	}
	return *c.proxy, true
}

// InsecureSSLCertificates reports whether server certificates are accepted
// without validation.
func (c Configuration) InsecureSSLCertificates() bool { return c.insecureSSL }

// TrustStore returns the trust store, if any.
func (c Configuration) TrustStore() (Store, bool) { return c.trustStore, c.trustStore.Path != "" }

// KeyStore returns the key store holding the client certificate, if any.
func (c Configuration) KeyStore() (Store, bool) { return c.keyStore, c.keyStore.Path != "" }

// RequestHeaders returns the static headers sent with every request.
func (c Configuration) RequestHeaders() []Header {
	return append([]Header(nil), c.headers...)
}

// RequestInterceptors returns the interceptors added with
// AddRequestInterceptor, in registration order.
func (c Configuration) RequestInterceptors() []Interceptor {
	return append([]Interceptor(nil), c.interceptors...)
}

// ResponseHandler returns the handler of responses, DefaultResponseHandler
// unless another one was set.
func (c Configuration) ResponseHandler() ResponseHandler {
	if c.responseHandler == nil {
		return DefaultResponseHandler{}
	}
	return c.responseHandler
}

// String describes the configuration with every password redacted.
func (c Configuration) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Configuration{host=%s, requestTimeout=%s", c.host, c.requestTimeout)
	if c.basicAuth.Username != "" {
		fmt.Fprintf(&sb, ", basicAuthUsername=%s, basicAuthPassword=%s", c.basicAuth.Username, redacted)
	}
	if c.proxy != nil {
		fmt.Fprintf(&sb, ", proxy=%s", c.proxy)
	}
	fmt.Fprintf(&sb, ", ignoreInvalidSslCertificates=%t", c.insecureSSL)
	if c.trustStore.Path != "" {
		fmt.Fprintf(&sb, ", trustStore=%s, trustStorePassword=%s", c.trustStore.Path, redacted)
	}
	if c.keyStore.Path != "" {
		fmt.Fprintf(&sb, ", keyStore=%s, keyStorePassword=%s", c.keyStore.Path, redacted)
	}
	names := make([]string, len(c.headers))
	for i, h := range c.headers {
		names[i] = h.Name
	}
	fmt.Fprintf(&sb, ", requestHeaders=%v, requestInterceptors=%d}", names, len(c.interceptors))

	return sb.String()
}

// ConfigurationBuilder accumulates settings for a Configuration.
// A builder is not safe for concurrent use.
type ConfigurationBuilder struct {
	cfg Configuration
}

// NewConfigurationBuilder starts a configuration for the API at host.
// "http://" is prepended to host unless it starts with "http://" or
// "https://".
func NewConfigurationBuilder(host string) *ConfigurationBuilder {
	return &ConfigurationBuilder{cfg: Configuration{
		host:           normalizeHost(host),
		requestTimeout: DefaultRequestTimeout,
	}}
}

// UseBasicAuth sends the given credentials to the API host with every
// request.
func (b *ConfigurationBuilder) UseBasicAuth(username, password string) *ConfigurationBuilder {
	b.cfg.basicAuth = transport.Credentials{Username: username, Password: password}
	return b
}

// UseProxy routes requests through proxy.
func (b *ConfigurationBuilder) UseProxy(proxy ProxyConfiguration) *ConfigurationBuilder {
	b.cfg.proxy = &proxy
	return b
}

// UseInsecureSSLCertificates accepts any server certificate, without chain
// or host name validation.
func (b *ConfigurationBuilder) UseInsecureSSLCertificates() *ConfigurationBuilder {
	b.cfg.insecureSSL = true
	return b
}

// UseTrustStore validates server certificates against the certificates of
// the given PEM bundle or PKCS#12 archive instead of the system roots.
func (b *ConfigurationBuilder) UseTrustStore(path, password string) *ConfigurationBuilder {
	b.cfg.trustStore = Store{Path: path, Password: password}
	return b
}

// UseKeyStore presents the client certificate of the given PKCS#12 archive
// or PEM file, which must hold both certificate and private key.
func (b *ConfigurationBuilder) UseKeyStore(path, password string) *ConfigurationBuilder {
	b.cfg.keyStore = Store{Path: path, Password: password}
	return b
}

// UseRequestTimeout sets the timeout of a whole request. Zero disables it.
func (b *ConfigurationBuilder) UseRequestTimeout(timeout time.Duration) *ConfigurationBuilder {
	b.cfg.requestTimeout = timeout
	return b
}

// WithRequestHeader adds a header sent with every request. Headers keep the
// order in which they are added.
func (b *ConfigurationBuilder) WithRequestHeader(name, value string) *ConfigurationBuilder {
	b.cfg.headers = append(b.cfg.headers, Header{Name: name, Value: value})
	return b
}

// AddRequestInterceptor registers an interceptor. Interceptors run in the
// order they are added, after the static request headers are set.
func (b *ConfigurationBuilder) AddRequestInterceptor(interceptor Interceptor) *ConfigurationBuilder {
	if interceptor != nil {
		b.cfg.interceptors = append(b.cfg.interceptors, interceptor)
	}
	return b
}

// UseResponseHandler replaces DefaultResponseHandler.
func (b *ConfigurationBuilder) UseResponseHandler(handler ResponseHandler) *ConfigurationBuilder {
	b.cfg.responseHandler = handler
	return b
}

// Build validates the settings and returns a snapshot of them. Changes made
// to the builder afterwards do not affect the returned Configuration.
//
// Errors are of type *ConfigError.
func (b *ConfigurationBuilder) Build() (Configuration, error) {
	cfg := b.cfg
	cfg.headers = append([]Header(nil), b.cfg.headers...)
	cfg.interceptors = append([]Interceptor(nil), b.cfg.interceptors...)
	if b.cfg.proxy != nil {
		proxy := *b.cfg.proxy
		cfg.proxy = &proxy
	}

	if err := validateConfiguration(&cfg); err != nil {
		return Configuration{}, err
	}

	return cfg, nil
}
