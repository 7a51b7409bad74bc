// Package logger provides structured logging for tokgate.
//
// It wraps log/slog with JSON and text handlers, a process-wide level that
// can be changed at runtime, and context helpers that carry the request id.
//
// Session tokens and API hashes must never reach a log line. Callers log the
// token fingerprint under "token_fp" instead, and the handlers redact
// anything that still slips through:
//
//   - values under sensitive keys (session_string, api_hash, password, code...)
//   - string values shaped like a gateway token, whatever the key
package logger
