package kagglelinkmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LinkMetrics records kaggle identity-linking operation outcomes.
type LinkMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, d time.Duration)
}

// PrometheusMetrics implements LinkMetrics on a prometheus registry.
type PrometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the kagglelink collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kagglelink_operation_attempts_total",
			Help: "Number of kaggle link operation attempts.",
		}, []string{"operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kagglelink_operation_successes_total",
			Help: "Number of kaggle link operations that succeeded.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kagglelink_operation_failures_total",
			Help: "Number of kaggle link operations that failed.",
		}, []string{"operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kagglelink_operation_duration_seconds",
			Help:    "Duration of kaggle link operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.attempts, m.successes, m.failures, m.durations)
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.successes.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation string, d time.Duration) {
	m.durations.WithLabelValues(operation).Observe(d.Seconds())
}

// NoOpMetrics discards all measurements. Used in tests.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
