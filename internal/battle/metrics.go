package battle

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricPairsSelected    = "battle_pairs_selected_total"
	MetricOutcomesRecorded = "battle_outcomes_recorded_total"
	MetricOutcomeConflicts = "battle_outcome_conflicts_total"
)

// Metrics contains Prometheus metrics for battle operations.
// All operations are thread-safe.
type Metrics struct {
	pairsSelected    *prometheus.CounterVec
	outcomesRecorded *prometheus.CounterVec
	outcomeConflicts *prometheus.CounterVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		pairsSelected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricPairsSelected,
				Help: "Total number of duel pairs served, by topic",
			},
			[]string{"topic_id"},
		),
		outcomesRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricOutcomesRecorded,
				Help: "Total number of duel outcomes applied, by topic",
			},
			[]string{"topic_id"},
		),
		outcomeConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricOutcomeConflicts,
				Help: "Total number of version conflicts hit while applying outcomes, by topic",
			},
			[]string{"topic_id"},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.pairsSelected,
		m.outcomesRecorded,
		m.outcomeConflicts,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncPairsSelected increments the served-pair counter for a topic.
func (m *Metrics) IncPairsSelected(topicID string) {
	m.pairsSelected.WithLabelValues(topicID).Inc()
}

// IncOutcomesRecorded increments the applied-outcome counter for a topic.
func (m *Metrics) IncOutcomesRecorded(topicID string) {
	m.outcomesRecorded.WithLabelValues(topicID).Inc()
}

// IncOutcomeConflicts increments the conflict counter for a topic.
func (m *Metrics) IncOutcomeConflicts(topicID string) {
	m.outcomeConflicts.WithLabelValues(topicID).Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.pairsSelected,
		m.outcomesRecorded,
		m.outcomeConflicts,
	}
}
