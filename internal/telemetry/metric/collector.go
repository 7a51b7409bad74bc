package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ConnectionSource reports the live connection count and its spread across
// map shards.
type ConnectionSource interface {
	Count() int
	ShardStats() []int
}

// Collector reads connection gauges at scrape time so the registry hot path
// carries no gauge bookkeeping.
type Collector struct {
	src ConnectionSource

	active *prometheus.Desc
	shard  *prometheus.Desc
}

// NewCollector creates a collector over src.
func NewCollector(src ConnectionSource) *Collector {
	return &Collector{
		src: src,
		active: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "registry", "connections_active"),
			"Live protocol connections held by the registry",
			nil, nil,
		),
		shard: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "registry", "shard_connections"),
			"Live connections per registry shard",
			[]string{"shard"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.shard
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(c.src.Count()))
	for i, n := range c.src.ShardStats() {
		ch <- prometheus.MustNewConstMetric(c.shard, prometheus.GaugeValue, float64(n), strconv.Itoa(i))
	}
}
