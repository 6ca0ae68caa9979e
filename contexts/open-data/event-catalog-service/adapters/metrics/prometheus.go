package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HarvestMetrics exports harvester outcomes to Prometheus.
type HarvestMetrics struct {
	sources   *prometheus.CounterVec
	events    *prometheus.CounterVec
	sweepDur  prometheus.Summary
	lastSweep prometheus.Gauge
}

func NewHarvestMetrics(registerer prometheus.Registerer) *HarvestMetrics {
	m := &HarvestMetrics{
		sources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "harvest",
			Name:      "sources_total",
			Help:      "Sources visited by the harvester by outcome",
		}, []string{"outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "harvest",
			Name:      "events_total",
			Help:      "Feed events processed by the harvester by outcome",
		}, []string{"outcome"}),
		sweepDur: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: "catalog",
			Subsystem: "harvest",
			Name:      "sweep_duration_seconds",
			Help:      "Time spent in a full harvest sweep",
		}),
		lastSweep: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catalog",
			Subsystem: "harvest",
			Name:      "last_sweep_timestamp_seconds",
			Help:      "Unix timestamp of the last completed sweep",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(m.sources, m.events, m.sweepDur, m.lastSweep)
	}
	return m
}

func (m *HarvestMetrics) SourceFetched(outcome string) {
	m.sources.WithLabelValues(outcome).Inc()
}

func (m *HarvestMetrics) EventIngested(outcome string) {
	m.events.WithLabelValues(outcome).Inc()
}

func (m *HarvestMetrics) SweepCompleted(duration time.Duration) {
	m.sweepDur.Observe(duration.Seconds())
	m.lastSweep.SetToCurrentTime()
}
