package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tokgate"

// Connection removal reasons.
const (
	RemovedLogout  = "logout"
	RemovedDrain   = "drain"
	RemovedFailure = "failure"
	RemovedClosed  = "closed"
	RemovedReplace = "replaced"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Connection metrics
	ConnectionsCreated prometheus.Counter
	ConnectionFailures *prometheus.CounterVec
	ConnectionsRemoved *prometheus.CounterVec
	ConnectDuration    prometheus.Histogram

	// Remote service metrics
	FloodWaits       prometheus.Counter
	FloodWaitSeconds prometheus.Histogram

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates the metric set on a private Prometheus registry, with
// the Go runtime and process collectors attached.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		ConnectionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "connections_created_total",
			Help:      "Protocol connections created and registered",
		}),
		ConnectionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "connection_failures_total",
			Help:      "Connection attempts that left nothing registered, by error code",
		}, []string{"code"}),
		ConnectionsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "connections_removed_total",
			Help:      "Connections removed and disconnected, by reason",
		}, []string{"reason"}),
		ConnectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "connect_duration_seconds",
			Help:      "Time to connect and authorize a new protocol client",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),

		FloodWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "flood_waits_total",
			Help:      "Flood-wait errors returned by the remote service",
		}),
		FloodWaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "flood_wait_seconds",
			Help:      "Wait durations demanded by the remote service",
			Buckets:   []float64{1, 5, 15, 30, 60, 300, 900, 3600},
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"method", "route"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ConnectionsCreated,
		r.ConnectionFailures,
		r.ConnectionsRemoved,
		r.ConnectDuration,
		r.FloodWaits,
		r.FloodWaitSeconds,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

// Register adds extra collectors, such as the connection collector.
func (r *Registry) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ConnectionCreated records a successful connect taking d.
func (r *Registry) ConnectionCreated(d time.Duration) {
	if r == nil {
		return
	}
	r.ConnectionsCreated.Inc()
	r.ConnectDuration.Observe(d.Seconds())
}

// ConnectionFailed records a failed connect by error code.
func (r *Registry) ConnectionFailed(code string) {
	if r == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	r.ConnectionFailures.WithLabelValues(code).Inc()
}

// ConnectionRemoved records n connections removed for reason.
func (r *Registry) ConnectionRemoved(reason string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.ConnectionsRemoved.WithLabelValues(reason).Add(float64(n))
}

// FloodWait records a flood-wait of d.
func (r *Registry) FloodWait(d time.Duration) {
	if r == nil {
		return
	}
	r.FloodWaits.Inc()
	r.FloodWaitSeconds.Observe(d.Seconds())
}

// ObserveRequest records one HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
