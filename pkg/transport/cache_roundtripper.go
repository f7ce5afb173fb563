package transport

import (
	"bufio"
	"bytes"
	"net/http"
	"net/http/httputil"
	"strings"
)

// XFromCache is the header set on responses served from a Cache.
const XFromCache = "X-From-Cache"

// A Cache interface is used by the Transport to store and retrieve responses.
type Cache interface {
	// Get returns the []byte representation of a cached response and a bool set
	// to true if the value isn't empty
	Get(key string) (responseBytes []byte, ok bool)
	// Set stores the []byte representation of a response against a key
	Set(key string, responseBytes []byte)
	// Delete removes the value associated with the key
	Delete(key string)
}

// CacheDecorator returns a RoundTripDecorator that serves successful GET
// responses from cache. Expiration is left to the Cache implementation.
//
// Entries are keyed by URL and Accept header. Requests carrying an
// Authorization header are never served from or stored in the cache.
// Requests with "Cache-Control: no-cache" skip the lookup and refresh the
// entry. Responses with "Cache-Control: no-store" are never stored. Any
// non-GET request invalidates the entry of its URL.
func CacheDecorator(cache Cache) RoundTripDecorator {
	return func(base http.RoundTripper) http.RoundTripper {
		return &CacheRoundTripper{Transport: base, Cache: cache}
	}
}

// CacheRoundTripper is the http.RoundTripper returned by CacheDecorator.
type CacheRoundTripper struct {
	Transport http.RoundTripper
	Cache     Cache
}

// RoundTrip executes a single HTTP transaction, returning
// a Response for the provided Request.
func (t *CacheRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	key := cacheKey(req)

	if req.Method != http.MethodGet {
		t.Cache.Delete(key)
		return t.Transport.RoundTrip(req)
	}

	if req.Header.Get("Authorization") != "" {
		return t.Transport.RoundTrip(req)
	}

	if !hasDirective(req.Header, "no-cache") {
		if cached, ok := t.Cache.Get(key); ok {
			res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(cached)), req)
			if err == nil {
				res.Header.Set(XFromCache, "1")
				return res, nil
			}
			t.Cache.Delete(key)
		}
	}

	res, err := t.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK || hasDirective(res.Header, "no-store") {
		return res, nil
	}

	// DumpResponse replaces res.Body with an equivalent reader.
	dump, err := httputil.DumpResponse(res, true)
	if err != nil {
		return nil, err
	}
	t.Cache.Set(key, dump)

	return res, nil
}

func cacheKey(req *http.Request) string {
	accept := req.Header.Values("Accept")
	if len(accept) == 0 {
		return req.URL.String()
	}
	return req.URL.String() + " " + strings.Join(accept, ", ")
}

func hasDirective(h http.Header, directive string) bool {
	for _, value := range h.Values("Cache-Control") {
		for _, part := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(part), directive) {
				return true
			}
		}
	}
	return false
}
