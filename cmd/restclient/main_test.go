package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luizaranda/go-restclient/pkg/restclient"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name   string
		method restclient.Method
		f      flags
		kind   restclient.BodyKind
	}{
		{"get with params", restclient.MethodGet, flags{params: []string{"q=go"}}, restclient.BodyForm},
		{"post form", restclient.MethodPost, flags{params: []string{"a=1", "b"}}, restclient.BodyForm},
		{"post json", restclient.MethodPost, flags{jsonData: `{"a":1}`, params: []string{"ignored=1"}}, restclient.BodyJSON},
		{"put text", restclient.MethodPut, flags{data: "hello"}, restclient.BodyText},
		{"delete", restclient.MethodDelete, flags{}, restclient.BodyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := newRequest(tt.method, "/v1/items", tt.f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Method() != tt.method || req.Body().Kind() != tt.kind {
				t.Errorf("request = %s %v", req.Method(), req.Body().Kind())
			}
		})
	}

	if _, err := newRequest(restclient.MethodPost, "/v1/items", flags{jsonData: "{"}); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestRootCommand(t *testing.T) {
	t.Setenv("RESTCLIENT_HOST", "")

	type received struct {
		method, path, body string
		header             http.Header
	}
	requests := make(chan received, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		requests <- received{method: r.Method, path: r.URL.Path, body: string(b), header: r.Header.Clone()}
		_, _ = io.WriteString(w, "created")
	}))
	defer srv.Close()

	cmd := newRootCommand()
	cmd.SetArgs([]string{"post", "/v1/items", "--host", srv.URL, "-p", "name=x", "-H", "Accept: text/plain", "--log-level", "error"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := <-requests
	if got.method != http.MethodPost || got.path != "/v1/items" {
		t.Fatalf("request = %s %s", got.method, got.path)
	}
	if got.body != "name=x" {
		t.Errorf("body = %q", got.body)
	}
	if got.header.Get("Accept") != "text/plain" || got.header.Get(restclient.DefaultRequestIDHeader) == "" {
		t.Errorf("headers = %v", got.header)
	}
}

func TestRootCommand_Errors(t *testing.T) {
	t.Setenv("RESTCLIENT_HOST", "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		args []string
	}{
		{"missing host", []string{"get", "/v1/items"}},
		{"bad header", []string{"get", "/v1/items", "--host", srv.URL, "-H", "no-colon"}},
		{"not found", []string{"get", "/v1/items", "--host", srv.URL}},
		{"unsupported method", []string{"patch", "/v1/items", "--host", srv.URL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCommand()
			cmd.SetArgs(append(tt.args, "--log-level", "error"))
			if err := cmd.Execute(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestNewTelemetry(t *testing.T) {
	noop, err := newTelemetry(flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = noop.Close()

	// A license alone builds the NewRelic agent, which rejects a malformed key.
	if _, err := newTelemetry(flags{license: "too-short"}); err == nil {
		t.Error("newrelic-license without datadog must build the telemetry client")
	}
}
