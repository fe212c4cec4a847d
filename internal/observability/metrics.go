// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// AuthorizationDecisions counts policy outcomes by subject kind, action and outcome.
	AuthorizationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_authorization_decisions_total",
		Help: "Authorization decisions by subject, action and outcome",
	}, []string{"subject", "action", "outcome"})

	// LastAdminVetoes counts demote/block attempts refused to keep an administrator.
	LastAdminVetoes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_last_admin_vetoes_total",
		Help: "Demote or block operations refused by the last-admin guard",
	}, []string{"operation"})

	// ConcurrencyConflicts counts saves rejected because of a stale version.
	ConcurrencyConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_concurrency_conflicts_total",
		Help: "Saves rejected because the stored version changed",
	}, []string{"entity"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PhotosStored counts stored photo variants by format.
	PhotosStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_photos_stored_total",
		Help: "Photo files written by format",
	}, []string{"format"})
)

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// HTTPMetrics returns the process-wide fiber request metrics middleware.
func HTTPMetrics(service string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(service)
	})
	return httpMetrics
}

const queryStartKey = "folio:query_start"

// RegisterGormMetrics records DatabaseQueryLatency for every GORM operation.
func RegisterGormMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			DatabaseQueryLatency.WithLabelValues(operation, tx.Statement.Table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	steps := []struct {
		op  string
		err error
	}{
		{"query", cb.Query().Before("gorm:query").Register("metrics:before_query", before)},
		{"query", cb.Query().After("gorm:query").Register("metrics:after_query", after("query"))},
		{"create", cb.Create().Before("gorm:create").Register("metrics:before_create", before)},
		{"create", cb.Create().After("gorm:create").Register("metrics:after_create", after("create"))},
		{"update", cb.Update().Before("gorm:update").Register("metrics:before_update", before)},
		{"update", cb.Update().After("gorm:update").Register("metrics:after_update", after("update"))},
		{"delete", cb.Delete().Before("gorm:delete").Register("metrics:before_delete", before)},
		{"delete", cb.Delete().After("gorm:delete").Register("metrics:after_delete", after("delete"))},
	}
	for _, s := range steps {
		if s.err != nil {
			return s.err
		}
	}
	return nil
}
