package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricCacheHitsTotal   = "worker_pool_cache_hits_total"
	MetricCacheMissesTotal = "worker_pool_cache_misses_total"
	MetricCacheErrorsTotal = "worker_pool_cache_errors_total"
)

// Metrics contains Prometheus metrics for the worker pool cache.
// All operations are thread-safe.
type Metrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	errors prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCacheHitsTotal,
			Help: "Total number of worker pool cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCacheMissesTotal,
			Help: "Total number of worker pool cache misses",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCacheErrorsTotal,
			Help: "Total number of worker pool cache failures (degraded to the source)",
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.errors} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncHits increments the cache hit counter.
func (m *Metrics) IncHits() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

// IncMisses increments the cache miss counter.
func (m *Metrics) IncMisses() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

// IncErrors increments the cache error counter.
func (m *Metrics) IncErrors() {
	if m == nil {
		return
	}
	m.errors.Inc()
}
