// Package config holds the tokgate-server settings.
//
// Default returns a complete ServerConfig; confloader overlays the YAML
// file, TOKGATE_ environment variables and command-line flags on top of
// it. Verify rejects values the server cannot run with, Keys lists the
// dotted paths a file may set, and Sanitize produces a copy safe to log.
package config
