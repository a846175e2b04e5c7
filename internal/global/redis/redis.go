package redis

import (
	"context"
	"net"
	"time"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/sentry/tracing"

	"github.com/redis/go-redis/v9"
)

// Client 全局 Redis 客户端，未配置 Host 时为 nil，调用方需自行降级
var Client *redis.Client

func Init() error {
	cfg := config.Get().Redis
	if cfg.Host == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if tracing.IsEnabled() {
		client.AddHook(tracing.NewRedisSentryHook())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	Client = client
	return nil
}
