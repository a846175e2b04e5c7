// Package metrics Prometheus 业务指标，由 /metrics 暴露
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hackathon"

var (
	Registry = prometheus.NewRegistry()

	SubmissionsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_created_total",
		Help:      "新建作品数，按状态区分",
	}, []string{"status"})

	EvaluationsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_recorded_total",
		Help:      "评分写入次数，result 为 created 或 updated",
	}, []string{"result"})

	Recalculations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "score_recalculations_total",
		Help:      "作品分数重算次数，outcome 为 ok 或 error",
	}, []string{"outcome"})

	RecalculationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "score_recalculation_seconds",
		Help:      "评分写入与分数重算所在事务的耗时",
		Buckets:   prometheus.DefBuckets,
	})

	LeaderboardCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leaderboard_cache_total",
		Help:      "排行榜缓存命中情况，result 为 hit 或 miss",
	}, []string{"result"})

	NotificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "webhook 通知投递结果",
	}, []string{"topic", "outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		SubmissionsCreated,
		EvaluationsRecorded,
		Recalculations,
		RecalculationDuration,
		LeaderboardCache,
		NotificationsSent,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
