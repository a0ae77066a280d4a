package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// 客户端调用 portal API 的延迟（毫秒）
	APICallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_api_call_latency_ms",
			Help:    "Portal API call latency in milliseconds as seen by the client",
			Buckets: prometheus.ExponentialBuckets(5, 2, 12), // 5ms to ~10s
		},
		[]string{"operation", "status"},
	)

	// 实体缓存各阶段计数
	StoreOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_store_operation_count",
			Help: "Entity store operations by phase",
		},
		[]string{"entity", "operation", "phase"}, // phase: pending, resolved, rejected
	)

	// 登录结果计数
	LoginAttemptCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_login_attempt_count",
			Help: "Login attempts by outcome",
		},
		[]string{"side", "outcome"}, // side: client, server
	)

	// 缓存命中计数
	CacheLookupCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_lookup_count",
			Help: "List cache lookups by result",
		},
		[]string{"key", "result"}, // result: hit, miss, error
	)

	// 审计 worker 消费事件计数
	EventConsumedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_event_consumed_count",
			Help: "Portal events consumed by the activity worker",
		},
		[]string{"routing_key", "result"}, // result: recorded, duplicate, dropped, failed
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordAPICallLatency 记录客户端 API 调用延迟
func RecordAPICallLatency(operation, status string, duration time.Duration) {
	APICallLatency.WithLabelValues(operation, status).Observe(float64(duration.Milliseconds()))
}

// IncrementStoreOperation 增加实体缓存阶段计数
func IncrementStoreOperation(entity, operation, phase string) {
	StoreOperationCount.WithLabelValues(entity, operation, phase).Inc()
}

// IncrementLoginAttempt 增加登录计数
func IncrementLoginAttempt(side, outcome string) {
	LoginAttemptCount.WithLabelValues(side, outcome).Inc()
}

// IncrementCacheLookup 增加缓存查找计数
func IncrementCacheLookup(key, result string) {
	CacheLookupCount.WithLabelValues(key, result).Inc()
}

// IncrementEventConsumed 增加事件消费计数
func IncrementEventConsumed(routingKey, result string) {
	EventConsumedCount.WithLabelValues(routingKey, result).Inc()
}
