// Package platformmetrics exposes the accounting engine's operational
// counters on a dedicated registry so /metrics only serves what we own.
package platformmetrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the domain instruments. A nil receiver is a no-op so
// callers never guard their recording sites.
type Metrics struct {
	penaltyEvaluations *prometheus.CounterVec
	markPaidResults    *prometheus.CounterVec
	statusCacheLookups *prometheus.CounterVec
	sweepRuns          prometheus.Counter
	sweepOverdue       prometheus.Gauge
	sweepDuration      prometheus.Histogram
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		penaltyEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platefee_penalty_evaluations_total",
			Help: "Penalty evaluations performed, by resulting level.",
		}, []string{"level"}),
		markPaidResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platefee_mark_paid_total",
			Help: "Mark-paid attempts, by outcome.",
		}, []string{"outcome"}),
		statusCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platefee_status_cache_lookups_total",
			Help: "Accounting status cache lookups, by result.",
		}, []string{"result"}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platefee_enforcement_sweeps_total",
			Help: "Completed enforcement sweep runs.",
		}),
		sweepOverdue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "platefee_overdue_restaurants",
			Help: "Restaurants past grace as of the last sweep.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "platefee_enforcement_sweep_duration_seconds",
			Help:    "Wall time of a full enforcement sweep.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.penaltyEvaluations,
		m.markPaidResults,
		m.statusCacheLookups,
		m.sweepRuns,
		m.sweepOverdue,
		m.sweepDuration,
	)
	return m
}

// RecordPenaltyEvaluation increments evaluation counts for a level.
func (m *Metrics) RecordPenaltyEvaluation(level string) {
	if m == nil {
		return
	}
	m.penaltyEvaluations.WithLabelValues(strings.TrimSpace(level)).Inc()
}

// RecordMarkPaid increments mark-paid counts. Outcome is one of
// "transitioned", "noop", "error".
func (m *Metrics) RecordMarkPaid(outcome string) {
	if m == nil {
		return
	}
	m.markPaidResults.WithLabelValues(strings.TrimSpace(outcome)).Inc()
}

// RecordCacheLookup increments cache lookup counts. Result is "hit" or "miss".
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.statusCacheLookups.WithLabelValues(strings.TrimSpace(result)).Inc()
}

// RecordSweep records a completed sweep.
func (m *Metrics) RecordSweep(durationSeconds float64, overdue int) {
	if m == nil {
		return
	}
	m.sweepRuns.Inc()
	m.sweepOverdue.Set(float64(overdue))
	m.sweepDuration.Observe(durationSeconds)
}
