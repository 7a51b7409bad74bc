// Package httpserver serves the gateway REST API.
//
// It uses the standard library net/http server and ServeMux; routing,
// middleware and handlers live in this package and in handler.
package httpserver

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Timeouts applied to every server. WriteTimeout stays generous because
// media downloads stream through it.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 2 * time.Minute
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 2 * time.Minute
)

// Server wraps http.Server with the gateway's timeouts.
type Server struct {
	srv *http.Server
}

// New returns a server for handler on addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// UseTLS serves HTTPS with cfg. Certificates come from cfg.GetCertificate,
// so they can rotate while the server runs. Call before ListenAndServe.
func (s *Server) UseTLS(cfg *tls.Config) {
	s.srv.TLSConfig = cfg
}

// ListenAndServe listens on Addr, with TLS when UseTLS set a config.
func (s *Server) ListenAndServe() error {
	if s.srv.TLSConfig != nil {
		return s.srv.ListenAndServeTLS("", "")
	}
	return s.srv.ListenAndServe()
}

// Serve accepts plain HTTP connections on l.
func (s *Server) Serve(l net.Listener) error {
	return s.srv.Serve(l)
}

// Shutdown stops accepting connections and waits for active requests
// until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
