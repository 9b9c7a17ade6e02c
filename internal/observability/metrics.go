package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 进程内 Prometheus 指标，经 /metrics 暴露
var (
	// StreakUpdates 连续打卡更新结果：incremented/reset/unchanged
	StreakUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dsatrack_streak_updates_total",
		Help: "Streak updates by outcome",
	}, []string{"outcome"})

	// StreakCASConflicts 并发写冲突后重试次数
	StreakCASConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dsatrack_streak_cas_conflicts_total",
		Help: "Compare-and-swap conflicts while persisting streak records",
	})

	// StreakCache 读缓存命中情况
	StreakCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dsatrack_streak_cache_total",
		Help: "Streak read cache lookups by result",
	}, []string{"result"})

	// StorageErrors 存储层错误
	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dsatrack_storage_errors_total",
		Help: "Storage failures by operation",
	}, []string{"op"})

	// HTTPRequests HTTP 请求计数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dsatrack_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})

	// HTTPDuration HTTP 请求耗时
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dsatrack_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"route"})
)
