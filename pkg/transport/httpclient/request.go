package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ReaderFunc returns a fresh reader over the same request body every time it
// is called.
type ReaderFunc func() (io.Reader, error)

func (r ReaderFunc) getBody() (io.ReadCloser, error) {
	tmp, err := r()
	if err != nil {
		return nil, err
	}
	if rc, ok := tmp.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(tmp), nil
}

// NewRequest creates an http.Request whose body can be replayed, so that
// net/http is able to resend it on redirects and connection resets.
//
// rawBody may be nil, a ReaderFunc, a string, a []byte, a *bytes.Buffer, a
// *bytes.Reader or any io.Reader, which is read fully in memory.
// ContentLength is set to the size of the body, except for a ReaderFunc whose
// reader has no Len method, where it is -1 (unknown) and the body is sent
// chunked.
func NewRequest(ctx context.Context, method, url string, rawBody any) (*http.Request, error) {
	if rawBody == nil {
		return http.NewRequestWithContext(ctx, method, url, nil)
	}

	readerFunc, contentLength, err := bodyReader(rawBody)
	if err != nil {
		return nil, err
	}

	body, err := readerFunc.getBody()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = contentLength
	req.GetBody = readerFunc.getBody
	if contentLength == 0 {
		req.Body = http.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
	}

	return req, nil
}

func bodyReader(rawBody any) (ReaderFunc, int64, error) {
	switch body := rawBody.(type) {
	case ReaderFunc:
		tmp, err := body()
		if err != nil {
			return nil, 0, err
		}
		if c, ok := tmp.(io.Closer); ok {
			defer c.Close()
		}
		if lr, ok := tmp.(interface{ Len() int }); ok {
			return body, int64(lr.Len()), nil
		}
		return body, -1, nil

	case string:
		return func() (io.Reader, error) { return strings.NewReader(body), nil }, int64(len(body)), nil

	case []byte:
		return func() (io.Reader, error) { return bytes.NewReader(body), nil }, int64(len(body)), nil

	case *bytes.Buffer:
		buf := body.Bytes()
		return func() (io.Reader, error) { return bytes.NewReader(buf), nil }, int64(len(buf)), nil

	case *bytes.Reader:
		snapshot := *body
		return func() (io.Reader, error) {
			r := snapshot
			return &r, nil
		}, int64(body.Len()), nil

	case io.Reader:
		buf, err := io.ReadAll(body)
		if err != nil {
			return nil, 0, err
		}
		return func() (io.Reader, error) { return bytes.NewReader(buf), nil }, int64(len(buf)), nil

	default:
		return nil, 0, fmt.Errorf("cannot handle request body of type %T", rawBody)
	}
}
