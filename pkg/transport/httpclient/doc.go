// Package httpclient builds *http.Client values on top of the round trippers
// in package transport: user agent, hooks, custom decorators, response cache,
// NewRelic and statsd tracing, and OpenTelemetry spans, in that order from the
// outside in.
package httpclient
