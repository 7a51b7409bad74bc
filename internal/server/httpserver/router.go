package httpserver

import (
	"net/http"

	"github.com/yndnr/tokgate-go/internal/server/httpserver/handler"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
	"github.com/yndnr/tokgate-go/internal/telemetry/metric"
)

// metricsPath serves Prometheus metrics.
const metricsPath = "/metrics"

// PublicPaths are served without an X-Session-String header.
var PublicPaths = []string{"/auth/send_code", "/health", "/ready", metricsPath}

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler wires the API handlers to their services.
	Handler handler.Config

	// Metrics backs /metrics and request metrics. Nil disables both.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger logger.Logger

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// RateLimit is the per-IP request rate (requests/second). Zero disables it.
	RateLimit float64

	// RateBurst is the per-IP bucket size.
	RateBurst int

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	hcfg := cfg.Handler
	if hcfg.Logger == nil {
		hcfg.Logger = log
	}
	h := handler.New(hcfg)

	mux := http.NewServeMux()
	if cfg.Metrics != nil {
		mux.Handle("GET "+metricsPath, cfg.Metrics.Handler())
	}
	mux.Handle("/", h)

	route := func(r *http.Request) string {
		if cfg.Metrics != nil && r.URL.Path == metricsPath {
			return "GET " + metricsPath
		}
		return h.Route(r)
	}

	// Order: Recover -> CORS -> RequestID -> RateLimit -> Tracing -> Audit -> SessionToken -> Handler
	middlewares := []Middleware{
		Recover(log),
		CORS(cfg.CORSAllowedOrigins),
		RequestID(),
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	middlewares = append(middlewares, Tracing(route))
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(AuditConfig{
			Logger:  log,
			Metrics: cfg.Metrics,
			Route:   route,
		}))
	}
	middlewares = append(middlewares, SessionToken(PublicPaths))

	return Chain(mux, middlewares...)
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		RateLimit:   50, // 50 requests/second per IP
		RateBurst:   100,
		EnableAudit: true,
	}
}
