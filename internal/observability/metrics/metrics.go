// Package metrics holds the prometheus-backed metric sets used by services,
// each with a NoOp variant for tests.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tripscore"

// OperationMetrics records service operation outcomes.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

type operationMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewOperationMetrics registers operation metrics under the given subsystem.
// A nil registerer yields NoOp.
func NewOperationMetrics(reg prometheus.Registerer, subsystem string) OperationMetrics {
	if reg == nil {
		return NoOp{}
	}

	labels := []string{"operation", "service"}
	m := &operationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "operation_attempts_total", Help: "Service operations started.",
		}, labels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "operation_success_total", Help: "Service operations that completed.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "operation_failure_total", Help: "Service operations that returned an error.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "operation_duration_seconds", Help: "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, labels),
	}
	reg.MustRegister(m.attempts, m.successes, m.failures, m.duration)
	return m
}

func (m *operationMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *operationMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *operationMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *operationMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(d.Seconds())
}

// StoreMetrics tracks the score store adapter.
type StoreMetrics interface {
	RecordStoreOperation(backend, collection, operation string, err error)
	SetFallbackActive(active bool)
}

type storeMetrics struct {
	ops      *prometheus.CounterVec
	fallback prometheus.Gauge
}

func NewStoreMetrics(reg prometheus.Registerer) StoreMetrics {
	if reg == nil {
		return NoOp{}
	}
	m := &storeMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store",
			Name: "operations_total", Help: "Store operations by backend, collection and result.",
		}, []string{"backend", "collection", "operation", "result"}),
		fallback: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "store",
			Name: "fallback_active", Help: "1 when the local fallback store is in use.",
		}),
	}
	reg.MustRegister(m.ops, m.fallback)
	return m
}

func (m *storeMetrics) RecordStoreOperation(backend, collection, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(backend, collection, operation, result).Inc()
}

func (m *storeMetrics) SetFallbackActive(active bool) {
	if active {
		m.fallback.Set(1)
		return
	}
	m.fallback.Set(0)
}

// StandingsMetrics exposes the derived standings state.
type StandingsMetrics interface {
	OperationMetrics
	SetCompetitionsDetermined(determined, total int)
	SetPrizePool(amount int)
	SetDayRecords(date string, recorded int)
	RecordRecompute(reason string)
}

type standingsMetrics struct {
	OperationMetrics
	determined prometheus.Gauge
	total      prometheus.Gauge
	pool       prometheus.Gauge
	dayRecords *prometheus.GaugeVec
	recomputes *prometheus.CounterVec
}

func NewStandingsMetrics(reg prometheus.Registerer) StandingsMetrics {
	if reg == nil {
		return NoOp{}
	}
	m := &standingsMetrics{
		OperationMetrics: NewOperationMetrics(reg, "standings"),
		determined: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "standings",
			Name: "competitions_determined", Help: "Competitions with a declared winner.",
		}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "standings",
			Name: "competitions_total", Help: "Competitions configured for the series.",
		}),
		pool: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "standings",
			Name: "prize_pool", Help: "Prize money awarded so far.",
		}),
		dayRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "standings",
			Name: "day_records", Help: "Round score records per competition day.",
		}, []string{"date"}),
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "standings",
			Name: "recomputes_total", Help: "Standings recomputations by trigger.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.determined, m.total, m.pool, m.dayRecords, m.recomputes)
	return m
}

func (m *standingsMetrics) SetCompetitionsDetermined(determined, total int) {
	m.determined.Set(float64(determined))
	m.total.Set(float64(total))
}

func (m *standingsMetrics) SetPrizePool(amount int) { m.pool.Set(float64(amount)) }

func (m *standingsMetrics) SetDayRecords(date string, recorded int) {
	m.dayRecords.WithLabelValues(date).Set(float64(recorded))
}

func (m *standingsMetrics) RecordRecompute(reason string) {
	m.recomputes.WithLabelValues(reason).Inc()
}

// NoOp satisfies every metrics interface in this package.
type NoOp struct{}

func (NoOp) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOp) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOp) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOp) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOp) RecordStoreOperation(string, string, string, error)                     {}
func (NoOp) SetFallbackActive(bool)                                                 {}
func (NoOp) SetCompetitionsDetermined(int, int)                                     {}
func (NoOp) SetPrizePool(int)                                                       {}
func (NoOp) SetDayRecords(string, int)                                              {}
func (NoOp) RecordRecompute(string)                                                 {}

var (
	_ OperationMetrics = NoOp{}
	_ StoreMetrics     = NoOp{}
	_ StandingsMetrics = NoOp{}
)
