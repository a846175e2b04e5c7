// Package tracing 提供 Sentry 性能追踪的集成
// 包含 GORM、Redis 和 HTTP 客户端的追踪实现
package tracing

import (
	"context"

	"hackathon-platform/config"

	"github.com/getsentry/sentry-go"
)

// IsEnabled 检查 Sentry 追踪是否已启用
func IsEnabled() bool {
	return config.Get().Sentry.Dsn != ""
}

// StartSpan 在 ctx 中的 transaction 下创建子 span，用于追踪评分聚合、排行榜等业务逻辑
// 没有父 span 时不创建，返回原 ctx 和空的结束函数
//
//	ctx, finish := tracing.StartSpan(ctx, "score.recalculate", "submission 42")
//	defer finish()
func StartSpan(ctx context.Context, operation, description string) (context.Context, func()) {
	parentSpan := sentry.SpanFromContext(ctx)
	if parentSpan == nil {
		return ctx, func() {}
	}

	span := parentSpan.StartChild(operation)
	span.Description = description
	return span.Context(), span.Finish
}
