package restclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/luizaranda/go-restclient/pkg/internal/testcerts"
	"github.com/luizaranda/go-restclient/pkg/log"
	"github.com/luizaranda/go-restclient/pkg/telemetry"
)

// echoed is what the fake API reports about the request it received.
type echoed struct {
	Method string      `json:"method"`
	Path   string      `json:"path"`
	Query  string      `json:"query"`
	Header http.Header `json:"header"`
	Body   string      `json:"body"`
}

type fakeAPI struct {
	hits atomic.Int64
}

func (a *fakeAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.hits.Add(1)
			next.ServeHTTP(w, r)
		})
	})

	r.HandleFunc("/v1/items", a.echo)
	r.HandleFunc("/v1/items/{id}", a.echo)

	r.Get("/status/{code}", func(w http.ResponseWriter, r *http.Request) {
		code, _ := strconv.Atoi(chi.URLParam(r, "code"))
		w.WriteHeader(code)
		_, _ = io.WriteString(w, "status "+chi.URLParam(r, "code"))
	})

	r.Get("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/v1/items?redirected=true", http.StatusFound)
	})

	r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "s3cret" {
			w.Header().Set("WWW-Authenticate", `Basic realm="test"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, "welcome")
	})

	r.Get("/truncated", func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\nshort")
		_ = buf.Flush()
	})

	return r
}

func (a *fakeAPI) echo(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(echoed{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header,
		Body:   string(body),
	})
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api.router())
	t.Cleanup(srv.Close)
	return api, srv
}

func newClient(t *testing.T, b *ConfigurationBuilder, opts ...Option) *Client {
	t.Helper()

	c, err := New(mustBuild(t, b), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func submitEcho(t *testing.T, c *Client, req Request) echoed {
	t.Helper()

	res, err := c.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var e echoed
	if err := res.DecodeJSON(&e); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	return e
}

func TestClient_HostWithoutSchemeAndStaticHeaders(t *testing.T) {
	_, srv := newFakeAPI(t)

	c := newClient(t, NewConfigurationBuilder(strings.TrimPrefix(srv.URL, "http://")).
		WithRequestHeader("Accept", "application/json").
		WithRequestHeader("X-Client", "restclient-test"))

	if c.Configuration().Host() != srv.URL {
		t.Fatalf("Host() = %q, want %q", c.Configuration().Host(), srv.URL)
	}

	e := submitEcho(t, c, Get("/v1/items?x=1"))
	if e.Method != http.MethodGet || e.Path != "/v1/items" || e.Query != "x=1" {
		t.Errorf("got %s %s?%s", e.Method, e.Path, e.Query)
	}
	if e.Header.Get("Accept") != "application/json" || e.Header.Get("X-Client") != "restclient-test" {
		t.Errorf("static headers missing: %v", e.Header)
	}
	if e.Header.Get("Authorization") != "" {
		t.Error("no Authorization header expected without basic auth")
	}
	if e.Body != "" {
		t.Errorf("GET body = %q, want empty", e.Body)
	}
}

func TestClient_HeaderOrder(t *testing.T) {
	_, srv := newFakeAPI(t)

	appendHeaders := func(values ...string) Interceptor {
		return InterceptorFuncs{Headers: func(headers []Header, _ RequestContext) ([]Header, error) {
			for _, v := range values {
				headers = append(headers, Header{Name: "X-Order", Value: v})
			}
			return headers, nil
		}}
	}

	c := newClient(t, NewConfigurationBuilder(srv.URL).
		WithRequestHeader("X-Order", "1").
		AddRequestInterceptor(appendHeaders("2")).
		AddRequestInterceptor(appendHeaders("3", "4")))

	e := submitEcho(t, c, Get("/v1/items"))
	if got := strings.Join(e.Header.Values("X-Order"), ","); got != "1,2,3,4" {
		t.Errorf("X-Order = %q, want 1,2,3,4", got)
	}
}

func TestClient_GetParameters(t *testing.T) {
	_, srv := newFakeAPI(t)

	var seen RequestContext
	c := newClient(t, NewConfigurationBuilder(srv.URL).
		AddRequestInterceptor(InterceptorFuncs{Parameters: func(params []Parameter, rc RequestContext) ([]Parameter, error) {
			seen = rc
			return append(params, Param("token", "abc")), nil
		}}))

	e := submitEcho(t, c, Get("/v1/items?x=1&y=2", Param("x", 9), Param("q", "a b")))
	if e.Query != "y=2&x=9&q=a+b&token=abc" {
		t.Errorf("query = %q", e.Query)
	}
	if seen.Method != MethodGet || seen.Endpoint != "/v1/items?x=1&y=2" || seen.URL != srv.URL+"/v1/items?x=1&y=2" {
		t.Errorf("request context = %+v", seen)
	}
}

func TestClient_Bodies(t *testing.T) {
	_, srv := newFakeAPI(t)

	c := newClient(t, NewConfigurationBuilder(srv.URL).
		AddRequestInterceptor(InterceptorFuncs{Parameters: func(params []Parameter, _ RequestContext) ([]Parameter, error) {
			return append(params, Param("signed", true)), nil
		}}))

	tests := []struct {
		name        string
		req         Request
		method      string
		body        string
		contentType string
	}{
		{
			name:        "post form",
			req:         Post("/v1/items", FormBody(Param("a", 1), Param("b", "x y"))),
			method:      http.MethodPost,
			body:        "a=1&b=x+y&signed=true",
			contentType: "application/x-www-form-urlencoded",
		},
		{
			name:        "put form",
			req:         Put("/v1/items/1", FormBody(Param("a", "2"))),
			method:      http.MethodPut,
			body:        "a=2&signed=true",
			contentType: "application/x-www-form-urlencoded",
		},
		{
			name:        "put text",
			req:         Put("/v1/items/1", TextBody("hello")),
			method:      http.MethodPut,
			body:        "hello",
			contentType: "text/plain; charset=utf-8",
		},
		{
			name:        "post json",
			req:         Post("/v1/items", JSONBody(map[string]int{"a": 1})),
			method:      http.MethodPost,
			body:        `{"a":1}`,
			contentType: "application/json",
		},
		{
			name:   "post without body",
			req:    Post("/v1/items", NoBody()),
			method: http.MethodPost,
		},
		{
			name:   "delete",
			req:    Delete("/v1/items/1"),
			method: http.MethodDelete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := submitEcho(t, c, tt.req)
			if e.Method != tt.method {
				t.Errorf("method = %q, want %q", e.Method, tt.method)
			}
			if e.Body != tt.body {
				t.Errorf("body = %q, want %q", e.Body, tt.body)
			}
			if got := e.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if e.Query != "" {
				t.Errorf("query = %q, want empty", e.Query)
			}
		})
	}
}

func TestClient_InterceptorContentTypeWins(t *testing.T) {
	_, srv := newFakeAPI(t)

	c := newClient(t, NewConfigurationBuilder(srv.URL).
		WithRequestHeader("Content-Type", "application/vnd.items+json"))

	e := submitEcho(t, c, Post("/v1/items", JSONBody([]int{1})))
	if got := e.Header.Values("Content-Type"); len(got) != 1 || got[0] != "application/vnd.items+json" {
		t.Errorf("Content-Type = %v", got)
	}
}

func TestClient_InterceptorRejection(t *testing.T) {
	api, srv := newFakeAPI(t)
	errRejected := errors.New("rejected")

	tests := []struct {
		name        string
		interceptor Interceptor
		req         Request
	}{
		{
			name: "headers",
			interceptor: InterceptorFuncs{Headers: func([]Header, RequestContext) ([]Header, error) {
				return nil, errRejected
			}},
			req: Get("/v1/items"),
		},
		{
			name: "parameters",
			interceptor: InterceptorFuncs{Parameters: func([]Parameter, RequestContext) ([]Parameter, error) {
				return nil, errRejected
			}},
			req: Post("/v1/items", FormBody(Param("a", 1))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, NewConfigurationBuilder(srv.URL).AddRequestInterceptor(tt.interceptor))

			res, err := c.Submit(context.Background(), tt.req)
			if err != errRejected {
				t.Fatalf("err = %v, want the interceptor error", err)
			}
			if res != nil {
				t.Error("no response expected")
			}
		})
	}

	if api.hits.Load() != 0 {
		t.Errorf("server was hit %d times, want 0", api.hits.Load())
	}
}

type counter struct {
	telemetry.Client

	mu     sync.Mutex
	counts map[string][]string
}

func (c *counter) Incr(name string, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name] = tags
}

func TestClient_CountsFailures(t *testing.T) {
	_, srv := newFakeAPI(t)
	rec := &counter{Client: telemetry.NewNoOpClient(), counts: map[string][]string{}}
	ctx := telemetry.Context(context.Background(), rec)

	c := newClient(t, NewConfigurationBuilder(srv.URL).AddRequestInterceptor(InterceptorFuncs{
		Headers: func([]Header, RequestContext) ([]Header, error) { return nil, errors.New("rejected") },
	}))
	_, _ = c.Submit(ctx, Delete("/v1/items/1"))

	closed := newClient(t, NewConfigurationBuilder("127.0.0.1:1").UseRequestTimeout(5*time.Second))
	_, _ = closed.Submit(ctx, Put("/v1/items/1", TextBody("x")))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if got := rec.counts[_rejectedMetric]; len(got) != 1 || got[0] != "method:delete" {
		t.Errorf("%s tags = %v", _rejectedMetric, got)
	}
	if got := rec.counts[_connectionErrorMetric]; len(got) != 1 || got[0] != "method:put" {
		t.Errorf("%s tags = %v", _connectionErrorMetric, got)
	}
}

func TestClient_DefaultResponseHandler(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := newClient(t, NewConfigurationBuilder(srv.URL))

	tests := []struct {
		code         int
		unauthorized bool
		notFound     bool
	}{
		{code: http.StatusUnauthorized, unauthorized: true},
		{code: http.StatusNotFound, notFound: true},
		{code: http.StatusBadRequest},
		{code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.code), func(t *testing.T) {
			res, err := c.Submit(context.Background(), Get("/status/{code}").WithPathParam("code", tt.code))

			var invalid *InvalidRequestError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want *InvalidRequestError", err)
			}
			if string(invalid.Body) != "status "+strconv.Itoa(tt.code) {
				t.Errorf("Body = %q", invalid.Body)
			}
			if StatusCode(err) != tt.code {
				t.Errorf("StatusCode(err) = %d", StatusCode(err))
			}
			if IsUnauthorized(err) != tt.unauthorized || IsNotFound(err) != tt.notFound {
				t.Errorf("IsUnauthorized = %v, IsNotFound = %v", IsUnauthorized(err), IsNotFound(err))
			}
			if res == nil || res.StatusCode != tt.code {
				t.Errorf("response = %v", res)
			}
		})
	}

	res, err := c.Submit(context.Background(), Get("/status/204"))
	if err != nil || res.StatusCode != http.StatusNoContent {
		t.Errorf("204: res = %v, err = %v", res, err)
	}
}

func TestClient_CustomResponseHandler(t *testing.T) {
	_, srv := newFakeAPI(t)

	c := newClient(t, NewConfigurationBuilder(srv.URL).UseResponseHandler(RawResponseHandler{}))
	res, err := c.Submit(context.Background(), Get("/status/500"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusInternalServerError || res.String() != "status 500" {
		t.Errorf("response = %d %q", res.StatusCode, res.String())
	}

	errCustom := errors.New("custom")
	c = newClient(t, NewConfigurationBuilder(srv.URL).UseResponseHandler(ResponseHandlerFunc(func(*http.Response) (*Response, error) {
		return nil, errCustom
	})))
	if _, err := c.Submit(context.Background(), Get("/v1/items")); err != errCustom {
		t.Errorf("err = %v, want the handler error", err)
	}
}

func TestClient_FollowsRedirects(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := newClient(t, NewConfigurationBuilder(srv.URL))

	e := submitEcho(t, c, Get("/redirect"))
	if e.Path != "/v1/items" || e.Query != "redirected=true" {
		t.Errorf("got %s?%s", e.Path, e.Query)
	}
}

func TestClient_ConnectionError(t *testing.T) {
	_, srv := newFakeAPI(t)
	srv.Close()

	c := newClient(t, NewConfigurationBuilder(srv.URL).UseRequestTimeout(5*time.Second))

	_, err := c.Submit(context.Background(), Get("/v1/items"))
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("err = %v, want *ConnectionError", err)
	}
	if connErr.Method != http.MethodGet || connErr.URL != srv.URL+"/v1/items" {
		t.Errorf("ConnectionError = %+v", connErr)
	}
}

func TestClient_ResultParsingError(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := newClient(t, NewConfigurationBuilder(srv.URL))

	_, err := c.Submit(context.Background(), Get("/truncated"))
	var parseErr *ResultParsingError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *ResultParsingError", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want it to wrap io.ErrUnexpectedEOF", err)
	}
}

func TestClient_UnsupportedMethod(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := newClient(t, NewConfigurationBuilder(srv.URL))

	_, err := c.Submit(context.Background(), NewRequest("PATCH", "/v1/items", NoBody()))
	if !errors.Is(err, ErrUnsupportedMethod) {
		t.Fatalf("err = %v, want ErrUnsupportedMethod", err)
	}
	if api.hits.Load() != 0 {
		t.Error("unsupported methods must not reach the server")
	}
}

func TestClient_PathParams(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := newClient(t, NewConfigurationBuilder(srv.URL))

	e := submitEcho(t, c, Get("/v1/items/{id}?view={view}").
		WithPathParam("id", 42).
		WithPathParam("view", "full list"))
	if e.Path != "/v1/items/42" || e.Query != "view=full+list" {
		t.Errorf("got %s?%s", e.Path, e.Query)
	}

	e = submitEcho(t, c, Delete("/v1/items/{id}").WithPathParams(struct {
		ID string `param:"id"`
	}{ID: "a-1"}))
	if e.Method != http.MethodDelete || e.Path != "/v1/items/a-1" {
		t.Errorf("got %s %s", e.Method, e.Path)
	}

	if _, err := c.Submit(context.Background(), Get("/v1/items/{id}")); !errors.Is(err, ErrMissingPathParam) {
		t.Errorf("err = %v, want ErrMissingPathParam", err)
	}
}

func TestClient_PreemptiveBasicAuth(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := newClient(t, NewConfigurationBuilder(srv.URL).UseBasicAuth("alice", "s3cret"))

	res, err := c.Submit(context.Background(), Get("/protected"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.String() != "welcome" {
		t.Errorf("body = %q", res.String())
	}
	if api.hits.Load() != 1 {
		t.Errorf("server was hit %d times, want a single authenticated request", api.hits.Load())
	}

	anonymous := newClient(t, NewConfigurationBuilder(srv.URL))
	if _, err := anonymous.Submit(context.Background(), Get("/protected")); !IsUnauthorized(err) {
		t.Errorf("err = %v, want unauthorized", err)
	}
}

func TestClient_Close(t *testing.T) {
	api, srv := newFakeAPI(t)

	c, err := New(mustBuild(t, NewConfigurationBuilder(srv.URL)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Submit(context.Background(), Get("/v1/items")); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := c.Submit(context.Background(), Get("/v1/items")); !errors.Is(err, ErrClientClosed) {
		t.Errorf("err = %v, want ErrClientClosed", err)
	}
	if api.hits.Load() != 1 {
		t.Errorf("server was hit %d times, want 1", api.hits.Load())
	}
}

func TestClient_ConcurrentSubmit(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := newClient(t, NewConfigurationBuilder(srv.URL).AddRequestInterceptor(RequestIDInterceptor{}))

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := c.Submit(context.Background(), Get("/v1/items/{id}").WithPathParam("id", i))
			errs <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Errorf("Submit: %v", err)
		}
	}
	if api.hits.Load() != n {
		t.Errorf("server was hit %d times, want %d", api.hits.Load(), n)
	}
}

func TestClient_DebugLogging(t *testing.T) {
	_, srv := newFakeAPI(t)

	core, logs := observer.New(zapcore.DebugLevel)
	c := newClient(t, NewConfigurationBuilder(srv.URL).UseBasicAuth("alice", "s3cret"),
		WithLogger(log.NewFromZap(zap.New(core))))

	if _, err := c.Submit(context.Background(), Post("/v1/items", TextBody("payload"))); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	executing := logs.FilterMessage("executing request").All()
	if len(executing) != 1 {
		t.Fatalf("got %d executing entries, want 1", len(executing))
	}
	fields := executing[0].ContextMap()
	if fields["method"] != http.MethodPost || fields["url"] != srv.URL+"/v1/items" {
		t.Errorf("fields = %v", fields)
	}

	completed := logs.FilterMessage("request completed").All()
	if len(completed) != 1 || completed[0].ContextMap()["status"] != int64(http.StatusOK) {
		t.Errorf("completed entries = %v", completed)
	}

	for _, entry := range logs.All() {
		for k, v := range entry.ContextMap() {
			if s, ok := v.(string); ok && strings.Contains(s, "s3cret") {
				t.Errorf("field %s leaks the password: %q", k, s)
			}
		}
	}
}

func newTLSServer(t *testing.T, certs *testcerts.Bundle, requireClientCert bool) *httptest.Server {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewUnstartedServer(api.router())
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{certs.Leaf}}
	if requireClientCert {
		srv.TLS.ClientAuth = tls.RequireAndVerifyClientCert
		srv.TLS.ClientCAs = certs.CertPool
	}
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_TLS(t *testing.T) {
	certs := testcerts.Generate(t)
	srv := newTLSServer(t, certs, false)

	tests := []struct {
		name    string
		builder *ConfigurationBuilder
		wantErr bool
	}{
		{"strict rejects unknown CA", NewConfigurationBuilder(srv.URL), true},
		{"insecure accepts unknown CA", NewConfigurationBuilder(srv.URL).UseInsecureSSLCertificates(), false},
		{"trust store", NewConfigurationBuilder(srv.URL).UseTrustStore(certs.CAFile, ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, tt.builder.UseRequestTimeout(5*time.Second))

			_, err := c.Submit(context.Background(), Get("/v1/items"))
			if tt.wantErr {
				var connErr *ConnectionError
				if !errors.As(err, &connErr) {
					t.Fatalf("err = %v, want *ConnectionError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestClient_MutualTLS(t *testing.T) {
	certs := testcerts.Generate(t)
	srv := newTLSServer(t, certs, true)

	c := newClient(t, NewConfigurationBuilder(srv.URL).
		UseTrustStore(certs.CAFile, "").
		UseKeyStore(certs.KeyStoreFile, ""))
	if _, err := c.Submit(context.Background(), Get("/v1/items")); err != nil {
		t.Fatalf("with client certificate: %v", err)
	}

	c = newClient(t, NewConfigurationBuilder(srv.URL).UseTrustStore(certs.CAFile, ""))
	_, err := c.Submit(context.Background(), Get("/v1/items"))
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("err = %v, want *ConnectionError without client certificate", err)
	}
}

func TestClient_MutualTLSWithPKCS12(t *testing.T) {
	certs := testcerts.Generate(t)
	srv := newTLSServer(t, certs, true)

	c := newClient(t, NewConfigurationBuilder(srv.URL).
		UseTrustStore(certs.TrustStoreP12File, testcerts.Password).
		UseKeyStore(certs.KeyStoreP12File, testcerts.Password))
	if _, err := c.Submit(context.Background(), Get("/v1/items")); err != nil {
		t.Fatalf("with PKCS#12 stores: %v", err)
	}
}

func TestClient_Proxy(t *testing.T) {
	type proxied struct {
		requestURI    string
		proxyAuth     string
		authorization string
	}
	received := make(chan proxied, 1)
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- proxied{
			requestURI:    r.RequestURI,
			proxyAuth:     r.Header.Get("Proxy-Authorization"),
			authorization: r.Header.Get("Authorization"),
		}
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(proxy.Close)

	proxyURL, err := url.Parse(proxy.URL)
	if err != nil {
		t.Fatalf("parse proxy URL: %v", err)
	}
	port, err := strconv.Atoi(proxyURL.Port())
	if err != nil {
		t.Fatalf("proxy port: %v", err)
	}

	c := newClient(t, NewConfigurationBuilder("http://api.invalid").
		UseBasicAuth("alice", "s3cret").
		UseProxy(NewProxyConfigurationBuilder().
			UseProxy(proxyURL.Hostname(), port, "http").
			UseProxyAuthentication("bob", "pp").
			Build()))

	res, err := c.Submit(context.Background(), Get("/v1/items?x=1", Param("a", "b")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.String() != "ok" {
		t.Errorf("body = %q", res.String())
	}

	got := <-received
	if got.requestURI != "http://api.invalid/v1/items?x=1&a=b" {
		t.Errorf("RequestURI = %q, want the absolute target URL", got.requestURI)
	}
	if got.proxyAuth != "Basic Ym9iOnBw" {
		t.Errorf("Proxy-Authorization = %q", got.proxyAuth)
	}
	if got.authorization != "Basic YWxpY2U6czNjcmV0" {
		t.Errorf("Authorization = %q", got.authorization)
	}
}

func TestNew_StoreErrors(t *testing.T) {
	_, err := New(mustBuild(t, NewConfigurationBuilder("localhost").UseTrustStore(t.TempDir()+"/missing.pem", "")))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want a configuration error", err)
	}

	if _, err := New(Configuration{}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("zero Configuration: err = %v, want a configuration error", err)
	}
}
