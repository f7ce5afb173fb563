package transport

import (
	"net/http"
)

// HookDecorator returns a RoundTripDecorator that runs the given hooks around
// every round trip of the wrapped http.RoundTripper.
//
// For more information check HookRoundTripper struct.
func HookDecorator(req []RequestHook, res []ResponseHook) RoundTripDecorator {
	return func(base http.RoundTripper) http.RoundTripper {
		return &HookRoundTripper{
			Transport:    base,
			RequestHook:  req,
			ResponseHook: res,
		}
	}
}

// RequestHook runs before each request is sent.
//
// It is only safe to mutate the context and headers of the given request.
// Returning an error aborts the request and the error is returned from
// RoundTrip as is.
type RequestHook func(*http.Request) error

// ResponseHook runs after each round trip with its outcome. Either the
// response or the error is non-nil.
//
// Reading or closing the response body from a hook affects the response
// returned to the caller.
type ResponseHook func(*http.Request, *http.Response, error)

// A HookRoundTripper is an http.RoundTripper that calls a list of hooks
// before sending a request and after the round trip finishes.
type HookRoundTripper struct {
	// Transport is the RoundTripper used to perform the request.
	Transport http.RoundTripper

	// RequestHook is called in order before each request.
	RequestHook []RequestHook

	// ResponseHook is called in order with the outcome of each round trip.
	ResponseHook []ResponseHook
}

// RoundTrip executes a single HTTP transaction surrounded by the configured
// hooks.
func (t *HookRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for _, hook := range t.RequestHook {
		if err := hook(req); err != nil {
			return nil, err
		}
	}

	res, err := t.Transport.RoundTrip(req)

	for _, hook := range t.ResponseHook {
		hook(req, res, err)
	}

	return res, err
}
