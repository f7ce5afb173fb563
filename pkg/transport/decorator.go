package transport

import (
	"net/http"
)

// RoundTripDecorator is a named type for any function that takes a RoundTripper
// and returns a RoundTripper.
type RoundTripDecorator func(http.RoundTripper) http.RoundTripper

// RoundTripChain is an ordered collection of RoundTripDecorator. The first
// decorator of the chain is the outermost one, so it sees a request before
// every other decorator does.
type RoundTripChain []RoundTripDecorator

// Apply wraps base with every decorator of the chain. Nil decorators are
// skipped.
func (c RoundTripChain) Apply(base http.RoundTripper) http.RoundTripper {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i] == nil {
			continue
		}
		base = c[i](base)
	}
	return base
}

// RoundTripFunc adapts an ordinary function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(req).
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
