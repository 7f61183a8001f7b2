package matching

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRankRequestsTotal          = "rank_requests_total"
	MetricRankDuration               = "rank_duration_seconds"
	MetricRankCandidatesEvaluated    = "rank_candidates_evaluated_total"
	MetricRankCandidatesSkippedTotal = "rank_candidates_skipped_total"
	MetricRankPoolSize               = "rank_last_pool_size"
)

// Status constants for labeling ranking request outcomes.
const (
	StatusSuccess      = "success"
	StatusNotFound     = "not_found"
	StatusInvalidInput = "invalid_input"
	StatusTimeout      = "timeout"
	StatusUpstream     = "upstream_error"
)

// Skip reason constants for labeling excluded candidates.
const (
	SkipReasonMalformed   = "malformed"
	SkipReasonOutOfRadius = "out_of_radius"
)

// Metrics contains Prometheus metrics for the ranking pipeline.
// All operations are thread-safe.
type Metrics struct {
	requestsTotal       *prometheus.CounterVec
	duration            prometheus.Histogram
	candidatesEvaluated prometheus.Counter
	candidatesSkipped   *prometheus.CounterVec
	lastPoolSize        prometheus.Gauge
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankRequestsTotal,
				Help: "Total number of ranking requests by outcome status",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRankDuration,
			Help:    "Histogram of full ranking call duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}),
		candidatesEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRankCandidatesEvaluated,
			Help: "Total number of candidate workers scored",
		}),
		candidatesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankCandidatesSkippedTotal,
				Help: "Total number of candidates excluded before scoring, by reason",
			},
			[]string{"reason"},
		),
		lastPoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricRankPoolSize,
			Help: "Size of the candidate pool in the most recent ranking call",
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.requestsTotal,
		m.duration,
		m.candidatesEvaluated,
		m.candidatesSkipped,
		m.lastPoolSize,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncRequests increments the request counter for the given status.
func (m *Metrics) IncRequests(status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(status).Inc()
}

// ObserveDuration records the duration of a ranking call in seconds.
func (m *Metrics) ObserveDuration(seconds float64) {
	if m == nil {
		return
	}
	m.duration.Observe(seconds)
}

// AddCandidatesEvaluated adds to the scored-candidate counter.
func (m *Metrics) AddCandidatesEvaluated(n int) {
	if m == nil {
		return
	}
	m.candidatesEvaluated.Add(float64(n))
}

// IncCandidatesSkipped increments the skipped-candidate counter for a reason.
func (m *Metrics) IncCandidatesSkipped(reason string) {
	if m == nil {
		return
	}
	m.candidatesSkipped.WithLabelValues(reason).Inc()
}

// SetPoolSize records the candidate pool size of the latest ranking call.
func (m *Metrics) SetPoolSize(n int) {
	if m == nil {
		return
	}
	m.lastPoolSize.Set(float64(n))
}
