package httpclient

import (
	"time"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/sentry/tracing"

	"github.com/go-resty/resty/v2"
)

var Client *resty.Client

func Init() {
	Client = New(config.Get().Notify)
}

// New 按通知配置创建客户端，超时未配置时默认 10 秒
func New(cfg config.Notify) *resty.Client {
	timeout := 10 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "hackathon-platform")

	// 配置 Sentry 性能追踪（如果 Sentry 已启用）
	if tracing.IsEnabled() {
		tracing.SetupRestyTracing(client)
	}
	return client
}
