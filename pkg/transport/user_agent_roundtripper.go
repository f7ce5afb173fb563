package transport

import (
	"net/http"

	"github.com/luizaranda/go-restclient/pkg/internal"
)

// UserAgentDecorator returns a RoundTripDecorator that sets a default
// User-Agent on requests that have none.
func UserAgentDecorator() RoundTripDecorator {
	return func(base http.RoundTripper) http.RoundTripper {
		return &UserAgentRoundTripper{Transport: base}
	}
}

// UserAgentRoundTripper is a http.RoundTripper that sets the User-Agent
// header to "go-restclient/x.y.z" unless the request already has one.
type UserAgentRoundTripper struct {
	Transport http.RoundTripper
}

// RoundTrip executes a single HTTP transaction, returning
// a Response for the provided Request.
func (ua *UserAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.UserAgent() == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", "go-restclient/"+internal.Version)
	}

	return ua.Transport.RoundTrip(req)
}
