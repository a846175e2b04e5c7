package tracing

import (
	"context"
	"net"
	"strings"
	"time"

	"hackathon-platform/config"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
)

// RedisSentryHook 追踪排行榜缓存的 Redis 命令，低于慢操作阈值的 span 不上报
type RedisSentryHook struct {
	slowThreshold time.Duration
}

func NewRedisSentryHook() *RedisSentryHook {
	ms := config.Get().Sentry.Tracing.RedisSlowThresholdMs
	return &RedisSentryHook{slowThreshold: time.Duration(ms) * time.Millisecond}
}

func (h *RedisSentryHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *RedisSentryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		parent := sentry.SpanFromContext(ctx)
		if parent == nil {
			return next(ctx, cmd)
		}
		span := parent.StartChild("db.redis")
		span.Description = strings.ToUpper(cmd.Name())
		span.SetData("db.system", "redis")
		span.SetData("db.operation", cmd.Name())
		if family := keyFamily(cmd.Args()); family != "" {
			span.SetTag("cache.key_family", family)
		}

		start := time.Now()
		err := next(span.Context(), cmd)
		failed := err
		if failed == redis.Nil { // 缓存未命中
			failed = nil
		}
		h.finish(span, time.Since(start), failed)
		return err
	}
}

func (h *RedisSentryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		parent := sentry.SpanFromContext(ctx)
		if parent == nil {
			return next(ctx, cmds)
		}
		names := make([]string, 0, min(len(cmds), 3))
		for _, cmd := range cmds[:min(len(cmds), 3)] {
			names = append(names, strings.ToUpper(cmd.Name()))
		}
		span := parent.StartChild("db.redis.pipeline")
		span.Description = "PIPELINE: " + strings.Join(names, ", ")
		if len(cmds) > len(names) {
			span.Description += "..."
		}
		span.SetData("db.system", "redis")
		span.SetData("redis.pipeline_length", len(cmds))

		start := time.Now()
		err := next(span.Context(), cmds)
		h.finish(span, time.Since(start), err)
		return err
	}
}

func (h *RedisSentryHook) finish(span *sentry.Span, elapsed time.Duration, err error) {
	if h.slowThreshold > 0 && elapsed < h.slowThreshold {
		span.Sampled = sentry.SampledFalse
	}
	span.Status = sentry.SpanStatusOK
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("redis.error", err.Error())
	}
	span.Finish()
}

// keyFamily 把命令的 key 归并为低基数的族名，含数字的段替换为 *，
// 如 leaderboard:12:v3:20:0 归为 leaderboard:*:*:*:*
func keyFamily(args []any) string {
	if len(args) < 2 {
		return ""
	}
	key, ok := args[1].(string)
	if !ok || key == "" {
		return ""
	}
	parts := strings.Split(key, ":")
	for i, p := range parts {
		if strings.ContainsAny(p, "0123456789") {
			parts[i] = "*"
		}
	}
	return strings.Join(parts, ":")
}
