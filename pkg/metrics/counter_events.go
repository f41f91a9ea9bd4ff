package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CounterEventMetrics tracks the aggregator's event pipeline.
type CounterEventMetrics struct {
	applied    *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	failures   *prometheus.CounterVec
}

// NewCounterEventMetrics registers aggregator metrics on the provided registerer.
func NewCounterEventMetrics(reg prometheus.Registerer) *CounterEventMetrics {
	if reg == nil {
		return &CounterEventMetrics{}
	}
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counter_events_applied",
		Help: "Counter events applied to denormalized counters.",
	}, []string{"kind"})
	duplicates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counter_events_duplicate",
		Help: "Counter events skipped as already processed.",
	}, []string{"kind"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counter_events_failed",
		Help: "Counter events that failed to apply.",
	}, []string{"kind"})
	reg.MustRegister(applied, duplicates, failures)
	return &CounterEventMetrics{
		applied:    applied,
		duplicates: duplicates,
		failures:   failures,
	}
}

// IncApplied increments the applied counter for the event kind.
func (m *CounterEventMetrics) IncApplied(kind string) {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDuplicate increments the duplicate counter for the event kind.
func (m *CounterEventMetrics) IncDuplicate(kind string) {
	if m == nil || m.duplicates == nil {
		return
	}
	m.duplicates.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncFailure increments the failure counter for the event kind.
func (m *CounterEventMetrics) IncFailure(kind string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(kind)).Inc()
}
