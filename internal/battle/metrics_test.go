package battle

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetrics_Register(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()

	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	m.IncPairsSelected("topic-1")
	m.IncOutcomesRecorded("topic-1")
	m.IncOutcomeConflicts("topic-1")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}

	want := map[string]bool{
		MetricPairsSelected:    false,
		MetricOutcomesRecorded: false,
		MetricOutcomeConflicts: false,
	}
	for _, mf := range metrics {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %s not found in registry", name)
		}
	}
}

func TestMetrics_CounterValues(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	m.IncOutcomesRecorded("topic-1")
	m.IncOutcomesRecorded("topic-1")
	m.IncOutcomesRecorded("topic-2")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}

	var outcomes *dto.MetricFamily
	for i := range metrics {
		if metrics[i].GetName() == MetricOutcomesRecorded {
			outcomes = metrics[i]
			break
		}
	}
	if outcomes == nil {
		t.Fatal("outcomes metric not found")
	}
	if len(outcomes.GetMetric()) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(outcomes.GetMetric()))
	}

	total := 0.0
	for _, entry := range outcomes.GetMetric() {
		total += entry.GetCounter().GetValue()
	}
	if total != 3 {
		t.Errorf("expected total count 3, got %f", total)
	}
}

func TestMetrics_Collectors(t *testing.T) {
	m := NewMetrics()
	if got := len(m.Collectors()); got != 3 {
		t.Errorf("expected 3 collectors, got %d", got)
	}
}
