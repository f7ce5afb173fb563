package restclient

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/luizaranda/go-restclient/pkg/internal"
)

const (
	_instrumentationName = "github.com/luizaranda/go-restclient/pkg/restclient"
	_spanName            = "RestClient"

	_durationMetric = "restclient.request.duration"

	_endpointSpanAttribute = attribute.Key("restclient.endpoint")
	_bodySpanAttribute     = attribute.Key("restclient.body_kind")
	_methodAttribute       = attribute.Key("http.method")
	_targetIDAttribute     = attribute.Key("restclient.target_id")
	_outcomeAttribute      = attribute.Key("restclient.outcome")
	_statusCodeAttribute   = attribute.Key("http.status_code")
)

func startSpan(ctx context.Context, req Request) (context.Context, trace.Span) {
	tracer := otel.Tracer(_instrumentationName, trace.WithInstrumentationVersion(internal.Version))

	ctx, span := tracer.Start(ctx, _spanName+" "+string(req.method), trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		_endpointSpanAttribute.String(req.endpoint),
		_bodySpanAttribute.String(req.body.kind.String()),
	)

	return ctx, span
}

func recordRequest(span trace.Span, req *http.Request) {
	span.SetAttributes(semconv.HTTPClientAttributesFromHTTPRequest(req)...)
}

func recordOutcome(span trace.Span, res *http.Response, err error) {
	if res != nil {
		span.SetAttributes(semconv.HTTPAttributesFromHTTPStatusCode(res.StatusCode)...)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	if res != nil {
		span.SetStatus(semconv.SpanStatusFromHTTPStatusCode(res.StatusCode))
	}
}

// recordDuration adds the duration of a submitted request, in milliseconds,
// to the request duration histogram of the global meter provider. status is
// zero when no response was received.
func recordDuration(ctx context.Context, method Method, targetID string, status int, elapsed time.Duration) {
	histogram, err := otel.Meter(_instrumentationName, metric.WithInstrumentationVersion(internal.Version)).
		Float64Histogram(_durationMetric, metric.WithUnit("ms"), metric.WithDescription("Duration of submitted requests."))
	if err != nil {
		otel.Handle(err)
		return
	}

	outcome := "error"
	if status != 0 {
		outcome = http.StatusText(status)
	}

	histogram.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(
		_methodAttribute.String(string(method)),
		_targetIDAttribute.String(targetID),
		_outcomeAttribute.String(outcome),
		_statusCodeAttribute.Int(status),
	))
}
