package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records duration and outcome of service operations and
// the progress of schema backfills.
type OperationMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	backfill *prometheus.CounterVec
}

// NewOperationMetrics registers the operation metrics on the provided registerer.
// A nil registerer yields a recorder that drops everything.
func NewOperationMetrics(reg prometheus.Registerer) *OperationMetrics {
	if reg == nil {
		return &OperationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pawnshop",
		Name:      "operation_duration_seconds",
		Help:      "Duration of store operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawnshop",
		Name:      "operation_success_total",
		Help:      "Successful store operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawnshop",
		Name:      "operation_failure_total",
		Help:      "Failed store operations by error code.",
	}, []string{"operation", "code"})
	backfill := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawnshop",
		Name:      "schema_backfill_rows_total",
		Help:      "Rows whose search projection was filled during schema upgrade.",
	}, []string{"table"})
	reg.MustRegister(duration, success, failure, backfill)
	return &OperationMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		backfill: backfill,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *OperationMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *OperationMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *OperationMetrics) IncFailure(operation, code string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// AddBackfilled counts rows rewritten by a backfill batch.
func (m *OperationMetrics) AddBackfilled(table string, rows int64) {
	if m == nil || m.backfill == nil || rows <= 0 {
		return
	}
	m.backfill.WithLabelValues(normalizeLabel(table)).Add(float64(rows))
}

// Observe records duration plus outcome in one call; code is consulted only
// when err is non-nil.
func (m *OperationMetrics) Observe(operation string, started time.Time, err error, code string) {
	m.ObserveDuration(operation, time.Since(started))
	if err != nil {
		m.IncFailure(operation, code)
		return
	}
	m.IncSuccess(operation)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
