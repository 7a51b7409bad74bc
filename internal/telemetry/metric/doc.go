// Package metric provides Prometheus metrics for tokgate.
//
//   - prometheus.go: the metric set, its registry and the /metrics handler
//   - collector.go: scrape-time gauges read from the connection registry
//
// All recording methods are nil-safe, so components built without metrics
// (tests, the CLI) can pass a nil *Registry.
package metric
