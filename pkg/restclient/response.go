package restclient

import (
	"encoding/json"
	"io"
	"net/http"
)

// Response is a response whose body has been fully read.
type Response struct {
	// StatusCode is the response status code.
	StatusCode int
	// Header is the response header map.
	Header http.Header
	// Body is the complete response body.
	Body []byte
}

// String returns the body as a string.
func (r *Response) String() string { return string(r.Body) }

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// DecodeJSON decodes the body into v. Failures are *ResultParsingError.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &ResultParsingError{Err: err}
	}
	return nil
}

// ResponseHandler turns a raw response into a Response. The caller closes the
// response body after Handle returns.
type ResponseHandler interface {
	Handle(res *http.Response) (*Response, error)
}

// ResponseHandlerFunc adapts a function to ResponseHandler.
type ResponseHandlerFunc func(res *http.Response) (*Response, error)

// Handle calls f(res).
func (f ResponseHandlerFunc) Handle(res *http.Response) (*Response, error) { return f(res) }

// DefaultResponseHandler reads the body and, when the status is not 2xx,
// returns an *InvalidRequestError along with the Response.
type DefaultResponseHandler struct{}

// Handle implements ResponseHandler.
func (DefaultResponseHandler) Handle(res *http.Response) (*Response, error) {
	r, err := readResponse(res)
	if err != nil {
		return nil, err
	}

	if !r.IsSuccess() {
		return r, &InvalidRequestError{StatusCode: r.StatusCode, Body: r.Body, Header: r.Header}
	}
	return r, nil
}

// RawResponseHandler reads the body and never fails on status.
type RawResponseHandler struct{}

// Handle implements ResponseHandler.
func (RawResponseHandler) Handle(res *http.Response) (*Response, error) {
	return readResponse(res)
}

func readResponse(res *http.Response) (*Response, error) {
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &ResultParsingError{Err: err}
	}

	return &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       b,
	}, nil
}
