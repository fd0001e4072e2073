package reputation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/repute-network/repute/internal/domain"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// RegisteredIdentities tracks the total number of registered identities.
var RegisteredIdentities = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "repute",
	Subsystem: "ledger",
	Name:      "registered_identities",
	Help:      "Current number of registered identities.",
})

// RatingsAggregated tracks total ratings folded into scores.
var RatingsAggregated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "repute",
	Subsystem: "ledger",
	Name:      "ratings_aggregated_total",
	Help:      "Total ratings aggregated into reputation scores.",
})

// RatingsRejected tracks rejected submissions by reason.
var RatingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "repute",
	Subsystem: "ledger",
	Name:      "ratings_rejected_total",
	Help:      "Total rating submissions rejected, by reason.",
}, []string{"reason"})

// DecayApplications tracks persisted decay passes.
var DecayApplications = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "repute",
	Subsystem: "ledger",
	Name:      "decay_applications_total",
	Help:      "Total decay passes persisted to records.",
})

// EffectiveRatings observes weighted rating contributions.
var EffectiveRatings = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "repute",
	Subsystem: "ledger",
	Name:      "effective_rating",
	Help:      "Weighted rating contributions before aggregation.",
	Buckets:   []float64{100, 250, 500, 750, 1000, 1250, 1500, 2000},
})

// ─── Metrics Sink ───────────────────────────────────────────────────────────

// MetricsSink mirrors ledger events into Prometheus counters.
type MetricsSink struct{}

// Publish implements domain.EventSink.
func (MetricsSink) Publish(ev domain.Event) {
	switch ev.Kind {
	case domain.EventRegistered:
		RegisteredIdentities.Inc()
	case domain.EventScoreUpdated:
		RatingsAggregated.Inc()
	case domain.EventDecayApplied:
		DecayApplications.Inc()
	}
}
