package competitionmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CompetitionMetrics records competition service operation outcomes.
type CompetitionMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, compType string)
	RecordOperationSuccess(ctx context.Context, operation, compType string)
	RecordOperationFailure(ctx context.Context, operation, compType string)
	RecordOperationDuration(ctx context.Context, operation, compType string, d time.Duration)
	RecordFreezeScheduled(ctx context.Context, compType string)
	RecordFreezeFired(ctx context.Context, compType string)
	RecordFetchFailure(ctx context.Context, contestRef, kind string)
}

// PrometheusMetrics implements CompetitionMetrics on a prometheus registry.
type PrometheusMetrics struct {
	attempts        *prometheus.CounterVec
	successes       *prometheus.CounterVec
	failures        *prometheus.CounterVec
	durations       *prometheus.HistogramVec
	freezeScheduled *prometheus.CounterVec
	freezeFired     *prometheus.CounterVec
	fetchFailures   *prometheus.CounterVec
}

// NewPrometheusMetrics registers the competition collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_operation_attempts_total",
			Help: "Number of competition service operation attempts.",
		}, []string{"operation", "comp_type"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_operation_successes_total",
			Help: "Number of competition service operations that succeeded.",
		}, []string{"operation", "comp_type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_operation_failures_total",
			Help: "Number of competition service operations that failed.",
		}, []string{"operation", "comp_type"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "competition_operation_duration_seconds",
			Help:    "Duration of competition service operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "comp_type"}),
		freezeScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_freeze_timers_scheduled_total",
			Help: "Number of participant freeze timers scheduled.",
		}, []string{"comp_type"}),
		freezeFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_freeze_timers_fired_total",
			Help: "Number of participant freeze timers that fired.",
		}, []string{"comp_type"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_leaderboard_fetch_failures_total",
			Help: "Leaderboard fetch failures by contest and failure kind.",
		}, []string{"contest_ref", "kind"}),
	}
	reg.MustRegister(
		m.attempts, m.successes, m.failures, m.durations,
		m.freezeScheduled, m.freezeFired, m.fetchFailures,
	)
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, compType string) {
	m.attempts.WithLabelValues(operation, compType).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, compType string) {
	m.successes.WithLabelValues(operation, compType).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, compType string) {
	m.failures.WithLabelValues(operation, compType).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, compType string, d time.Duration) {
	m.durations.WithLabelValues(operation, compType).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordFreezeScheduled(_ context.Context, compType string) {
	m.freezeScheduled.WithLabelValues(compType).Inc()
}

func (m *PrometheusMetrics) RecordFreezeFired(_ context.Context, compType string) {
	m.freezeFired.WithLabelValues(compType).Inc()
}

func (m *PrometheusMetrics) RecordFetchFailure(_ context.Context, contestRef, kind string) {
	m.fetchFailures.WithLabelValues(contestRef, kind).Inc()
}

// NoOpMetrics discards all measurements. Used in tests.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordFreezeScheduled(context.Context, string)                         {}
func (NoOpMetrics) RecordFreezeFired(context.Context, string)                             {}
func (NoOpMetrics) RecordFetchFailure(context.Context, string, string)                    {}
