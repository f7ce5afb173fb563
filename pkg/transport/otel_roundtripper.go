package transport

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/luizaranda/go-restclient/pkg/telemetry/tracing"
)

// OpenTelemetryDecorator returns a decorator that creates a client span per
// round trip and injects the span context into the outgoing headers.
//
// Spans are named "<METHOD> <endpoint template>" when the request context
// carries an endpoint template, see tracing.WithEndpointTemplate.
func OpenTelemetryDecorator(opts ...otelhttp.Option) RoundTripDecorator {
	opts = append([]otelhttp.Option{otelhttp.WithSpanNameFormatter(spanName)}, opts...)

	return func(base http.RoundTripper) http.RoundTripper {
		return otelhttp.NewTransport(base, opts...)
	}
}

func spanName(_ string, r *http.Request) string {
	if template := tracing.EndpointTemplate(r.Context()); template != "" {
		return r.Method + " " + template
	}
	return "HTTP " + r.Method
}
