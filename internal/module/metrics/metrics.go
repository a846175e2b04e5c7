package metrics

import (
	"hackathon-platform/internal/global/metrics"

	"github.com/gin-gonic/gin"
)

type ModuleMetrics struct{}

func (m *ModuleMetrics) GetName() string {
	return "Metrics"
}

func (m *ModuleMetrics) Init() {}

// InitRouter 暴露 Prometheus 抓取端点
func (m *ModuleMetrics) InitRouter(r *gin.RouterGroup) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
