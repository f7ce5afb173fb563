package httpclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/luizaranda/go-restclient/pkg/transport"
)

func TestNew_DoesNotFollowRedirectsByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		_, _ = io.WriteString(w, "new")
	}))
	defer srv.Close()

	res, err := New().Get(srv.URL + "/old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want 302", res.StatusCode)
	}

	res, err = New(FollowRedirects(true)).Get(srv.URL + "/old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
}

func TestNew_HooksDecoratorsAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Echo", r.Header.Get("X-Hook")+"|"+r.Header.Get("X-Decorated"))
	}))
	defer srv.Close()

	var seen int
	client := New(
		WithTimeout(5*time.Second),
		WithTimeout(-1),
		WithRequestHook(func(r *http.Request) error {
			r.Header.Set("X-Hook", "hook")
			return nil
		}),
		WithResponseHook(func(_ *http.Request, res *http.Response, _ error) {
			seen = res.StatusCode
		}),
		WithDecorators(func(next http.RoundTripper) http.RoundTripper {
			return transport.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
				r = r.Clone(r.Context())
				r.Header.Set("X-Decorated", "deco")
				return next.RoundTrip(r)
			})
		}),
		WithoutOpenTelemetry(),
	)

	if client.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, negative values must be ignored", client.Timeout)
	}

	res, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res.Body.Close()

	if got := res.Header.Get("X-Echo"); got != "hook|deco" {
		t.Errorf("X-Echo = %q", got)
	}
	if seen != http.StatusOK {
		t.Errorf("response hook saw %d", seen)
	}
}

func TestLocalCache(t *testing.T) {
	c := NewLocalCache(1, time.Minute)
	defer c.Close()

	if _, ok := c.Get("k"); ok {
		t.Fatal("empty cache returned a value")
	}

	c.Set("k", []byte("v"))
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, ok)
	}

	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted key still present")
	}
}

func TestNew_CacheSeesDecoratorHeaders(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	cache := NewLocalCache(8, time.Minute)
	defer cache.Close()

	client := New(
		WithCache(cache),
		WithDecorators(transport.PreemptiveAuthDecorator(map[string]transport.Credentials{
			transport.Scope(mustParseURL(t, srv.URL)): {Username: "alice", Password: "s3cret"},
		})),
		WithoutOpenTelemetry(),
	)

	for i := 0; i < 2; i++ {
		res, err := client.Get(srv.URL + "/items")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res.Body.Close()
		if res.Header.Get(transport.XFromCache) != "" {
			t.Error("authenticated response served from cache")
		}
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}
