package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the exact-match engine.
type Metrics struct {
	// Identity check outcomes by reason (NONE, ID_CARD_MATCH, NAME_DOB_PHONE_MATCH)
	CheckOutcome *prometheus.CounterVec

	// Store lookup latency by lookup kind
	LookupLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all exact-match metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certdedup_identity_check_outcomes_total",
			Help: "Total identity duplicate check outcomes by reason",
		}, []string{"reason"}),

		LookupLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certdedup_identity_lookup_duration_seconds",
			Help:    "Duration of identity store lookups by kind",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}), // kind: "id_card", "combo"
	}
}

// IncrementOutcome records an identity check outcome.
func (m *Metrics) IncrementOutcome(reason string) {
	if m != nil {
		m.CheckOutcome.WithLabelValues(reason).Inc()
	}
}

// ObserveLookup records the duration of one store lookup.
func (m *Metrics) ObserveLookup(kind string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}
