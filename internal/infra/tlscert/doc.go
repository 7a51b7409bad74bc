// Package tlscert serves the HTTPS certificate and reloads it when the
// certificate or key file changes on disk.
package tlscert
