package ping

import (
	"context"
	"net/http"
	"time"

	"hackathon-platform/internal/global/database"
	"hackathon-platform/internal/global/redis"
	"hackathon-platform/internal/global/response"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

// health 依赖状态：ok、disabled 或错误信息
func health(ctx context.Context) map[string]string {
	status := map[string]string{"database": "disabled", "redis": "disabled"}
	if database.DB != nil {
		status["database"] = "ok"
		if sqlDB, err := database.DB.DB(); err != nil {
			status["database"] = err.Error()
		} else if err := sqlDB.PingContext(ctx); err != nil {
			status["database"] = err.Error()
		}
	}
	if redis.Client != nil {
		status["redis"] = "ok"
		if err := redis.Client.Ping(ctx).Err(); err != nil {
			status["redis"] = err.Error()
		}
	}
	return status
}

func (p *ModulePing) InitRouter(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		deps := health(ctx)
		for name, state := range deps {
			if state != "ok" && state != "disabled" {
				log.Warn("依赖不可用", "dependency", name, "error", state)
			}
		}
		response.Success(c, map[string]any{
			"message":      "pong",
			"version":      version,
			"dependencies": deps,
		})
	})

	r.HEAD("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}
