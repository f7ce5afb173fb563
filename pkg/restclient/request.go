package restclient

import (
	"context"
	"net/http"
)

// Method is the HTTP verb of a Request.
type Method string

// Supported methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// Request is an API call to submit through a Client. Requests are values:
// the With methods return modified copies.
type Request struct {
	method     Method
	endpoint   string
	body       Body
	pathParams []Parameter
	targetID   string
}

// Get returns a GET request for endpoint whose params are sent in the query
// string.
func Get(endpoint string, params ...Parameter) Request {
	return Request{method: MethodGet, endpoint: endpoint, body: FormBody(params...)}
}

// Post returns a POST request for endpoint sending body.
func Post(endpoint string, body Body) Request {
	return Request{method: MethodPost, endpoint: endpoint, body: body}
}

// Put returns a PUT request for endpoint sending body.
func Put(endpoint string, body Body) Request {
	return Request{method: MethodPut, endpoint: endpoint, body: body}
}

// Delete returns a DELETE request for endpoint. DELETE requests never carry
// a body.
func Delete(endpoint string) Request {
	return Request{method: MethodDelete, endpoint: endpoint}
}

// NewRequest returns a request with an arbitrary method. Client.Submit
// rejects methods other than the supported ones with ErrUnsupportedMethod.
func NewRequest(method Method, endpoint string, body Body) Request {
	return Request{method: method, endpoint: endpoint, body: body}
}

// Method returns the HTTP verb of r.
func (r Request) Method() Method { return r.method }

// Endpoint returns the endpoint of r as given, placeholders included.
func (r Request) Endpoint() string { return r.endpoint }

// Body returns the payload descriptor of r.
func (r Request) Body() Body { return r.body }

// WithPathParam returns a copy of r in which the endpoint placeholder
// {name} is replaced by value. See Param for the supported value types.
func (r Request) WithPathParam(name string, value any) Request {
	r.pathParams = append(append([]Parameter(nil), r.pathParams...), Param(name, value))
	return r
}

// WithPathParams returns a copy of r whose endpoint placeholders are filled
// from the fields of the struct v, named as in FormBodyOf.
func (r Request) WithPathParams(v any) Request {
	r.pathParams = append(append([]Parameter(nil), r.pathParams...), structParams(v)...)
	return r
}

// WithTargetID returns a copy of r that reports targetID in its metrics
// instead of the endpoint. It should have low cardinality.
func (r Request) WithTargetID(targetID string) Request {
	r.targetID = targetID
	return r
}

// RequestContext describes the call being made to every interceptor it goes
// through.
type RequestContext struct {
	// Method is the HTTP verb of the call.
	Method Method
	// URL is the host joined with the expanded endpoint, before GET
	// parameters are added to it.
	URL string
	// Endpoint is the endpoint of the request as given.
	Endpoint string

	ctx context.Context
}

// Context returns the context the request was submitted with.
func (rc RequestContext) Context() context.Context {
	if rc.ctx == nil {
		return context.Background()
	}
	return rc.ctx
}
