package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	StageTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_transition_count",
			Help: "Total number of client stage transition attempts",
		},
		[]string{"to_stage", "result"}, // result: ok, noop, forbidden, conflict, error
	)

	TaskCreatedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_created_count",
			Help: "Total number of tasks created",
		},
		[]string{"source"}, // source: api
	)

	NotificationEmailCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_email_count",
			Help: "Total number of task notification emails attempted",
		},
		[]string{"status"}, // status: sent, failed, skipped
	)

	AnalyticsCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_count",
			Help: "Stage timing snapshot cache lookups",
		},
		[]string{"outcome"}, // outcome: hit, miss, bypass
	)
)

// RecordHTTPRequestDuration records the latency of one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records the latency of one repository call.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordMQConsumeLatency records how long one MQ delivery took to handle.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementStageTransition counts a transition attempt by outcome.
func IncrementStageTransition(toStage, result string) {
	StageTransitionCount.WithLabelValues(toStage, result).Inc()
}

// IncrementTaskCreated counts a created task.
func IncrementTaskCreated(source string) {
	TaskCreatedCount.WithLabelValues(source).Inc()
}

// IncrementNotificationEmail counts an email send attempt by status.
func IncrementNotificationEmail(status string) {
	NotificationEmailCount.WithLabelValues(status).Inc()
}

// IncrementAnalyticsCache counts a snapshot cache lookup by outcome.
func IncrementAnalyticsCache(outcome string) {
	AnalyticsCacheCount.WithLabelValues(outcome).Inc()
}
