package transport

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Credentials is a username and password pair used for basic auth.
type Credentials struct {
	Username string
	Password string
}

// Scope returns the "host:port" authentication scope of u. When u has no
// explicit port, 443 is used for https and 80 for everything else.
func Scope(u *url.URL) string {
	port := u.Port()
	if port == "" {
		port = "80"
		if strings.EqualFold(u.Scheme, "https") {
			port = "443"
		}
	}
	return net.JoinHostPort(strings.ToLower(u.Hostname()), port)
}

// PreemptiveAuthDecorator returns a RoundTripDecorator that sends basic auth
// credentials on the first request to a known scope, without waiting for a
// 401 challenge.
//
// scopes maps a scope as returned by Scope to its credentials. Requests that
// already carry an Authorization header are left untouched.
func PreemptiveAuthDecorator(scopes map[string]Credentials) RoundTripDecorator {
	return func(base http.RoundTripper) http.RoundTripper {
		return &PreemptiveAuthRoundTripper{Transport: base, Scopes: scopes}
	}
}

// PreemptiveAuthRoundTripper is the http.RoundTripper returned by
// PreemptiveAuthDecorator.
type PreemptiveAuthRoundTripper struct {
	Transport http.RoundTripper
	Scopes    map[string]Credentials
}

// RoundTrip executes a single HTTP transaction, returning
// a Response for the provided Request.
func (t *PreemptiveAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") != "" {
		return t.Transport.RoundTrip(req)
	}

	creds, ok := t.Scopes[Scope(req.URL)]
	if !ok {
		return t.Transport.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.SetBasicAuth(creds.Username, creds.Password)

	return t.Transport.RoundTrip(req)
}
