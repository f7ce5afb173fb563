package transport

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/luizaranda/go-restclient/pkg/telemetry"
	"github.com/luizaranda/go-restclient/pkg/telemetry/tracing"
)

const (
	_httpDNSTimingMetric          = "restclient.http.client.dns.time"
	_httpTCPConnectTimingMetric   = "restclient.http.client.tcp_connect.time"
	_httpTLSHandshakeTimingMetric = "restclient.http.client.tls_handshake.time"

	_httpRequestMetric                    = "restclient.http.client.request.time"
	_httpGotFirstResponseByteTimingMetric = "restclient.http.client.response_first_byte.time"
	_httpResponseFullyReadTimingMetric    = "restclient.http.client.response_fully_read.time"
)

// TraceDecorator returns a RoundTripDecorator that records NewRelic external
// segments and request timing metrics.
//
// When withConnTrace is true connection level timings (DNS, TCP connect, TLS
// handshake, first response byte, body fully read) are recorded as well.
//
// For more information check TracedRoundTripper struct.
func TraceDecorator(withConnTrace bool) RoundTripDecorator {
	return func(base http.RoundTripper) http.RoundTripper {
		return &TracedRoundTripper{Transport: base, ConnTrace: withConnTrace}
	}
}

// TracedRoundTripper is a http.RoundTripper that instruments outgoing
// requests.
//
// Metrics are recorded through pkg/telemetry, so the request context must
// carry a telemetry.Client for them to go anywhere. Requests whose context
// has a target id (see pkg/telemetry/tracing) are tagged with it.
//
// NewRelic segments are only recorded when the request context contains a
// NewRelic transaction.
type TracedRoundTripper struct {
	Transport http.RoundTripper
	ConnTrace bool
}

// RoundTrip executes a single HTTP transaction, returning
// a Response for the provided Request.
func (t *TracedRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	// StartExternalSegment mutates the request headers.
	request = request.Clone(request.Context())
	segment := newrelic.StartExternalSegment(nil, request)
	segment.Procedure = segmentProcedure(request)

	tags := commonTags(request)
	startTime := time.Now()

	outgoing := request
	if t.ConnTrace {
		outgoing = withClientTrace(request, tags, startTime)
	}

	response, err := t.Transport.RoundTrip(outgoing)
	if err != nil {
		segment.AddAttribute("error", err.Error())
	} else if t.ConnTrace {
		ctx := request.Context()
		response.Body = &errorReadCloser{
			R: response.Body,
			OnErr: func(err error) {
				if err == io.EOF {
					err = nil
				}
				recordResponse(ctx, tags, startTime, _httpResponseFullyReadTimingMetric, response, err)
			},
		}
	}
	segment.Response = response
	segment.End()

	recordResponse(request.Context(), tags, startTime, _httpRequestMetric, response, err)

	return response, err
}

func commonTags(req *http.Request) []string {
	tags := []string{"method:" + strings.ToLower(req.Method)}

	if targetID := tracing.TargetID(req.Context()); targetID != "" {
		tags = append(tags, "target_id:"+telemetry.SanitizeMetricTagValue(targetID))
	}

	return tags
}

func segmentProcedure(request *http.Request) string {
	ctx := request.Context()

	if endpointTemplate := tracing.EndpointTemplate(ctx); endpointTemplate != "" {
		return request.Method + " " + endpointTemplate
	}

	if targetID := tracing.TargetID(ctx); targetID != "" {
		return request.Method + " " + targetID
	}

	return request.Method
}

func recordResponse(ctx context.Context, tags []string, startTime time.Time, metric string, response *http.Response, err error) {
	status, statusClass := "error", "error"
	if err == nil {
		status = strconv.Itoa(response.StatusCode)
		statusClass = strconv.Itoa(response.StatusCode/100) + "xx"
	} else if os.IsTimeout(err) {
		status = "timeout"
	}

	recordTimeSince(ctx, metric, startTime, append(tags[:len(tags):len(tags)], "status:"+status, "status_class:"+statusClass))
}

// withClientTrace attaches an httptrace.ClientTrace that records connection
// timings. DNS, connect and TLS callbacks only fire for new connections.
func withClientTrace(request *http.Request, tags []string, startTime time.Time) *http.Request {
	ctx := request.Context()

	var dnsStart, connectStart, tlsStart time.Time

	trace := &httptrace.ClientTrace{
		DNSStart:          func(httptrace.DNSStartInfo) { dnsStart = time.Now() },
		ConnectStart:      func(string, string) { connectStart = time.Now() },
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		DNSDone: func(info httptrace.DNSDoneInfo) {
			recordTimeSince(ctx, _httpDNSTimingMetric, dnsStart, withStatus(tags, info.Err))
		},
		ConnectDone: func(_, _ string, err error) {
			recordTimeSince(ctx, _httpTCPConnectTimingMetric, connectStart, withStatus(tags, err))
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			recordTimeSince(ctx, _httpTLSHandshakeTimingMetric, tlsStart, withStatus(tags, err))
		},
		GotFirstResponseByte: func() {
			recordTimeSince(ctx, _httpGotFirstResponseByteTimingMetric, startTime, tags)
		},
	}

	return request.WithContext(httptrace.WithClientTrace(ctx, trace))
}

func withStatus(tags []string, err error) []string {
	status := "status:ok"
	switch {
	case err == nil:
	case os.IsTimeout(err):
		status = "status:timeout"
	default:
		status = "status:error"
	}

	return append(tags[:len(tags):len(tags)], status)
}

func recordTimeSince(ctx context.Context, metric string, start time.Time, tags []string) {
	if start.IsZero() {
		return
	}

	telemetry.Timing(ctx, metric, time.Since(start), tags)
}

// errorReadCloser calls OnErr with the first error returned by R, io.EOF
// included.
type errorReadCloser struct {
	R     io.ReadCloser
	OnErr func(error)

	done bool
}

func (r *errorReadCloser) Read(p []byte) (int, error) {
	n, err := r.R.Read(p)
	if err != nil && !r.done {
		r.done = true
		r.OnErr(err)
	}
	return n, err
}

func (r *errorReadCloser) Close() error {
	return r.R.Close()
}
