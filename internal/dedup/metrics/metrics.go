package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the dedup orchestrator.
type Metrics struct {
	// Adjudication outcomes by status (UNIQUE, REVIEW, DUPLICATE)
	AdjudicationOutcome *prometheus.CounterVec

	// Prior results replayed without re-scoring
	ResultReplays prometheus.Counter

	// External scorer call latency and failures
	ScorerLatency prometheus.Histogram
	ScorerErrors  prometheus.Counter

	// Full batch check latency
	BatchLatency prometheus.Histogram
}

// New creates a Metrics instance with all orchestrator metrics registered.
func New() *Metrics {
	return &Metrics{
		AdjudicationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certdedup_adjudication_outcomes_total",
			Help: "Total certificate adjudication outcomes by status",
		}, []string{"status"}),

		ResultReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certdedup_result_replays_total",
			Help: "Total checks answered from a previously persisted result without re-scoring",
		}),

		ScorerLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certdedup_scorer_duration_seconds",
			Help:    "Duration of external similarity scorer calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		ScorerErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certdedup_scorer_errors_total",
			Help: "Total failed external similarity scorer calls",
		}),

		BatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certdedup_batch_check_duration_seconds",
			Help:    "Duration of full certificate batch checks",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementOutcome records one adjudication outcome.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.AdjudicationOutcome.WithLabelValues(status).Inc()
	}
}

// IncrementReplay records an idempotent replay of a prior result.
func (m *Metrics) IncrementReplay() {
	if m != nil {
		m.ResultReplays.Inc()
	}
}

// ObserveScorer records one scorer call.
func (m *Metrics) ObserveScorer(d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.ScorerLatency.Observe(d.Seconds())
	if failed {
		m.ScorerErrors.Inc()
	}
}

// ObserveBatch records one full batch check.
func (m *Metrics) ObserveBatch(d time.Duration) {
	if m != nil {
		m.BatchLatency.Observe(d.Seconds())
	}
}
