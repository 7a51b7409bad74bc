package logger

import "context"

type (
	loggerKey    struct{}
	requestIDKey struct{}
	traceIDKey   struct{}
	tokenFPKey   struct{}
)

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID stores the request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithTraceID stores the trace ID in ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext returns the trace ID, or "".
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// WithTokenFingerprint stores the fingerprint of the caller's session token.
// The token itself never goes into a log context.
func WithTokenFingerprint(ctx context.Context, fp string) context.Context {
	return context.WithValue(ctx, tokenFPKey{}, fp)
}

// TokenFingerprintFromContext returns the stored fingerprint, or "".
func TokenFingerprintFromContext(ctx context.Context) string {
	fp, _ := ctx.Value(tokenFPKey{}).(string)
	return fp
}

// L returns the context logger with request_id, trace_id and token_fp
// attached when present. Handlers and services log through it.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	var attrs []any
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if id := TraceIDFromContext(ctx); id != "" {
		attrs = append(attrs, "trace_id", id)
	}
	if fp := TokenFingerprintFromContext(ctx); fp != "" {
		attrs = append(attrs, "token_fp", fp)
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
