// Package main provides the entry point for tokgate-server.
//
// tokgate-server exposes a REST API over the Telegram MTProto protocol.
// It keeps no per-user state of its own: every request carries a session
// token, and live protocol connections are cached per token.
//
// Usage:
//
//	tokgate-server --config /etc/tokgate/server.yaml
//	tokgate-server --version
//
// Every config key can be overridden from the environment with the
// TOKGATE_ prefix, e.g. TOKGATE_SERVER_HTTP_ADDR=0.0.0.0:8000.
package main
