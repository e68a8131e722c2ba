package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Approvals
	ChangeRequestsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_requests_submitted_total",
			Help: "Change requests accepted for review",
		},
		[]string{"entity_kind", "action"},
	)
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_decisions_total",
			Help: "Committed approval decisions",
		},
		[]string{"entity_kind", "status"},
	)
	DecisionsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_decisions_failed_total",
			Help: "Decisions rolled back, by error code",
		},
		[]string{"code"},
	)
	DecisionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "approval_decision_duration_seconds",
			Help:    "Time spent inside one decision transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Bulk
	BulkItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_items_total",
			Help: "Bulk items processed",
		},
		[]string{"result"}, // success|failed
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
	AuditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Audit events dropped because the worker queue was full",
		},
	)
)

// handler for /metrics
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(
		RequestsTotal,
		HTTPLatency,
		ChangeRequestsSubmitted,
		DecisionsTotal,
		DecisionsFailed,
		DecisionDuration,
		BulkItemsTotal,
		WorkerQueueDepth,
		AuditDropped,
	)
}
