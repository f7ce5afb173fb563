package restclient

import (
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
)

// Interceptor rewrites the headers and form parameters of outgoing requests.
//
// Interceptors run in registration order, each one receiving the output of
// the previous one. Implementations must not keep or modify the slices they
// receive, and must be safe for concurrent use. Returning an error aborts the
// request before it is sent, and Client.Submit returns that error as is.
type Interceptor interface {
	// ModifyHeaders returns the headers to send. The first interceptor
	// receives an empty list.
	ModifyHeaders(headers []Header, rc RequestContext) ([]Header, error)

	// ModifyParameters returns the form parameters to send. The first
	// interceptor receives the parameters of the request body. It is only
	// called for requests with a form body.
	ModifyParameters(params []Parameter, rc RequestContext) ([]Parameter, error)
}

// InterceptorFuncs adapts plain functions to Interceptor. A nil function
// passes its input through.
type InterceptorFuncs struct {
	Headers    func(headers []Header, rc RequestContext) ([]Header, error)
	Parameters func(params []Parameter, rc RequestContext) ([]Parameter, error)
}

// ModifyHeaders calls f.Headers.
func (f InterceptorFuncs) ModifyHeaders(headers []Header, rc RequestContext) ([]Header, error) {
	if f.Headers == nil {
		return headers, nil
	}
	return f.Headers(headers, rc)
}

// ModifyParameters calls f.Parameters.
func (f InterceptorFuncs) ModifyParameters(params []Parameter, rc RequestContext) ([]Parameter, error) {
	if f.Parameters == nil {
		return params, nil
	}
	return f.Parameters(params, rc)
}

// HeaderInterceptor appends a fixed list of headers to every request.
type HeaderInterceptor struct {
	headers []Header
}

// NewHeaderInterceptor returns a HeaderInterceptor sending a copy of headers.
func NewHeaderInterceptor(headers ...Header) *HeaderInterceptor {
	return &HeaderInterceptor{headers: append([]Header(nil), headers...)}
}

// ModifyHeaders appends the static headers.
func (h *HeaderInterceptor) ModifyHeaders(headers []Header, _ RequestContext) ([]Header, error) {
	return append(headers[:len(headers):len(headers)], h.headers...), nil
}

// ModifyParameters returns params unchanged.
func (h *HeaderInterceptor) ModifyParameters(params []Parameter, _ RequestContext) ([]Parameter, error) {
	return params, nil
}

// DefaultRequestIDHeader is the header set by RequestIDInterceptor when none
// is configured.
const DefaultRequestIDHeader = "X-Request-Id"

// RequestIDInterceptor tags every request with a random UUID, unless an
// earlier interceptor already set the header.
type RequestIDInterceptor struct {
	// Header defaults to DefaultRequestIDHeader.
	Header string
}

// ModifyHeaders appends the request id header.
func (r RequestIDInterceptor) ModifyHeaders(headers []Header, _ RequestContext) ([]Header, error) {
	name := r.Header
	if name == "" {
		name = DefaultRequestIDHeader
	}

	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return headers, nil
		}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("restclient: generating request id: %w", err)
	}

	return append(headers[:len(headers):len(headers)], Header{Name: name, Value: id.String()}), nil
}

// ModifyParameters returns params unchanged.
func (r RequestIDInterceptor) ModifyParameters(params []Parameter, _ RequestContext) ([]Parameter, error) {
	return params, nil
}

// interceptorChain folds a request through a list of interceptors.
type interceptorChain []Interceptor

func (c interceptorChain) headers(rc RequestContext) ([]Header, error) {
	var headers []Header
	for _, i := range c {
		var err error
		if headers, err = i.ModifyHeaders(headers, rc); err != nil {
			return nil, err
		}
	}
	return headers, nil
}

func (c interceptorChain) parameters(params []Parameter, rc RequestContext) ([]Parameter, error) {
	params = append([]Parameter(nil), params...)
	for _, i := range c {
		var err error
		if params, err = i.ModifyParameters(params, rc); err != nil {
			return nil, err
		}
	}
	return params, nil
}
