package restclient

import (
	"crypto/tls"
	"net/url"
	"sort"

	"github.com/luizaranda/go-restclient/pkg/transport"
)

// CredentialStore holds the credentials known to a client, keyed by the
// "host:port" scope they apply to.
type CredentialStore struct {
	credentials map[string]transport.Credentials
}

// Credentials returns the credentials of scope.
func (s CredentialStore) Credentials(scope string) (transport.Credentials, bool) {
	c, ok := s.credentials[scope]
	return c, ok
}

// Scopes returns the known scopes, sorted.
func (s CredentialStore) Scopes() []string {
	scopes := make([]string, 0, len(s.credentials))
	for scope := range s.credentials {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes
}

// AuthCache is the set of scopes whose credentials are sent with the first
// request, without waiting for a 401 challenge.
type AuthCache struct {
	scopes map[string]struct{}
}

// Contains reports whether scope is authenticated pre-emptively.
func (a AuthCache) Contains(scope string) bool {
	_, ok := a.scopes[scope]
	return ok
}

// TransportContext is everything the transport of a Client needs to
// authenticate and secure its connections. It is assembled once per client.
type TransportContext struct {
	// Credentials holds proxy credentials under the proxy scope and basic
	// auth credentials under the API host scope.
	Credentials CredentialStore
	// AuthCache lists the scopes authenticated pre-emptively.
	AuthCache AuthCache
	// TLSConfig is the certificate validation policy and client certificate.
	TLSConfig *tls.Config
	// ProxyURL is the proxy to route requests through, nil for a direct
	// connection. It carries the proxy credentials as user info.
	ProxyURL *url.URL

	proxyScope string
}

// NewTransportContext builds the TransportContext of cfg. Unreadable trust or
// key stores are reported as *ConfigError.
func NewTransportContext(cfg Configuration) (*TransportContext, error) {
	tc := &TransportContext{
		Credentials: CredentialStore{credentials: map[string]transport.Credentials{}},
		AuthCache:   AuthCache{scopes: map[string]struct{}{}},
	}

	if proxy, ok := cfg.Proxy(); ok {
		tc.ProxyURL = proxy.URL()
		if proxy.AuthenticationEnabled() {
			tc.proxyScope = transport.Scope(tc.ProxyURL)
			tc.Credentials.credentials[tc.proxyScope] = transport.Credentials{
				Username: proxy.Username(),
				Password: proxy.Password(),
			}
			tc.AuthCache.scopes[tc.proxyScope] = struct{}{}
		}
	}

	if username, password, ok := cfg.BasicAuth(); ok {
		hostURL, err := url.Parse(cfg.Host())
		if err != nil {
			return nil, &ConfigError{Field: "Host", Reason: "is not a valid URL", Err: err}
		}

		scope := transport.Scope(hostURL)
		tc.Credentials.credentials[scope] = transport.Credentials{Username: username, Password: password}
		tc.AuthCache.scopes[scope] = struct{}{}
	}

	tlsConfig, err := newTLSConfig(cfg)
	if err != nil {
		return nil, err
	}
	tc.TLSConfig = tlsConfig

	return tc, nil
}

// preemptiveCredentials returns the credentials sent in the Authorization
// header: every scope in the auth cache but the proxy's, which travels as
// Proxy-Authorization through ProxyURL.
func (tc *TransportContext) preemptiveCredentials() map[string]transport.Credentials {
	scopes := make(map[string]transport.Credentials, len(tc.AuthCache.scopes))
	for scope := range tc.AuthCache.scopes {
		if scope == tc.proxyScope {
			continue
		}
		if c, ok := tc.Credentials.Credentials(scope); ok {
			scopes[scope] = c
		}
	}
	return scopes
}

func newTLSConfig(cfg Configuration) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if store, ok := cfg.TrustStore(); ok {
		pool, err := loadTrustStore(store)
		if err != nil {
			return nil, &ConfigError{Field: "TrustStore", Reason: "cannot be loaded", Err: err}
		}
		tlsConfig.RootCAs = pool
	}

	if store, ok := cfg.KeyStore(); ok {
		cert, err := loadKeyStore(store)
		if err != nil {
			return nil, &ConfigError{Field: "KeyStore", Reason: "cannot be loaded", Err: err}
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if cfg.InsecureSSLCertificates() {
		tlsConfig.InsecureSkipVerify = true
	}

	return tlsConfig, nil
}
