package restclient

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultProxyScheme is the scheme used to talk to a proxy when none is given.
const DefaultProxyScheme = "http"

// ProxyConfiguration describes the proxy requests are routed through.
type ProxyConfiguration struct {
	host     string
	port     int
	scheme   string
	username string
	password string
}

// Host returns the proxy host name.
func (p ProxyConfiguration) Host() string { return p.host }

// Port returns the proxy port.
func (p ProxyConfiguration) Port() int { return p.port }

// Scheme returns the scheme used to talk to the proxy, e.g. "http".
func (p ProxyConfiguration) Scheme() string { return p.scheme }

// Username returns the user to authenticate with against the proxy.
func (p ProxyConfiguration) Username() string { return p.username }

// Password returns the password to authenticate with against the proxy.
func (p ProxyConfiguration) Password() string { return p.password }

// AuthenticationEnabled reports whether proxy credentials were set.
func (p ProxyConfiguration) AuthenticationEnabled() bool { return p.username != "" }

// Address returns "host:port".
func (p ProxyConfiguration) Address() string {
	return net.JoinHostPort(p.host, strconv.Itoa(p.port))
}

// URL returns the proxy URL, with credentials as user info when
// authentication is enabled.
func (p ProxyConfiguration) URL() *url.URL {
	u := &url.URL{Scheme: p.scheme, Host: p.Address()}
	if p.AuthenticationEnabled() {
		u.User = url.UserPassword(p.username, p.password)
	}
	return u
}

func (p ProxyConfiguration) String() string {
	s := "ProxyConfiguration{host=" + p.host + ", port=" + strconv.Itoa(p.port) + ", scheme=" + p.scheme
	if p.AuthenticationEnabled() {
		s += ", username=" + p.username + ", password=" + redacted
	}
	return s + "}"
}

// ProxyConfigurationBuilder builds a ProxyConfiguration.
type ProxyConfigurationBuilder struct {
	proxy ProxyConfiguration
}

// NewProxyConfigurationBuilder returns an empty builder.
func NewProxyConfigurationBuilder() *ProxyConfigurationBuilder {
	return &ProxyConfigurationBuilder{proxy: ProxyConfiguration{scheme: DefaultProxyScheme}}
}

// UseProxy sets the proxy address. An empty scheme means DefaultProxyScheme.
func (b *ProxyConfigurationBuilder) UseProxy(host string, port int, scheme string) *ProxyConfigurationBuilder {
	if scheme == "" {
		scheme = DefaultProxyScheme
	}
	b.proxy.host = host
	b.proxy.port = port
	b.proxy.scheme = strings.ToLower(scheme)
	return b
}

// UseProxyAuthentication sets the proxy credentials. Authentication is
// enabled iff username is not empty.
func (b *ProxyConfigurationBuilder) UseProxyAuthentication(username, password string) *ProxyConfigurationBuilder {
	b.proxy.username = username
	b.proxy.password = password
	return b
}

// Build returns the ProxyConfiguration. It is validated as part of the
// Configuration it is used in.
func (b *ProxyConfigurationBuilder) Build() ProxyConfiguration {
	return b.proxy
}
