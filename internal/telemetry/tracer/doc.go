// Package tracer provides OpenTelemetry tracing for tokgate.
//
// When tracing is enabled, spans are batched to an OTLP/HTTP collector.
// Disabled tracing installs a no-op provider, so StartSpan is always safe
// to call. The HTTP middleware opens one span per request and the protocol
// adapter opens child spans around remote calls.
package tracer
