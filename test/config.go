package test

import (
	"testing"

	"hackathon-platform/config"

	"github.com/gin-gonic/gin"
)

// Setup 使用测试密钥并切换 gin 到测试模式，测试结束后恢复原配置
func Setup(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	old := config.Get()
	cfg := *old
	cfg.JWT.AccessSecret = "test-secret"
	cfg.JWT.AccessExpire = 3600
	config.Set(&cfg)
	t.Cleanup(func() { config.Set(old) })
}

// Engine 返回挂载了 mount 路由的 gin 引擎
func Engine(mount func(*gin.RouterGroup)) *gin.Engine {
	r := gin.New()
	mount(r.Group(""))
	return r
}
