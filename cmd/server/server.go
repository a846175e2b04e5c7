package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/database"
	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/httpclient"
	"hackathon-platform/internal/global/logger"
	"hackathon-platform/internal/global/middleware"
	internalOtel "hackathon-platform/internal/global/otel"
	"hackathon-platform/internal/global/redis"
	"hackathon-platform/internal/global/sentry"
	"hackathon-platform/internal/global/storage"
	"hackathon-platform/internal/module"
	"hackathon-platform/tools"

	"github.com/gin-gonic/gin"
)

var log *slog.Logger

func Init() {
	config.Init()
	logger.Init()
	log = logger.New("Server")

	if err := sentry.Init(); err != nil {
		log.Error("Sentry 初始化失败", "error", err)
	}

	database.Init()

	if err := redis.Init(); err != nil {
		// 排行榜缓存不可用时直接查库
		log.Warn("Redis 连接失败，排行榜缓存已禁用", "error", err)
	}

	httpclient.Init()
	eventbus.Init(logger.New("EventBus"))
	storage.Init()

	if config.Get().OTel.Enable {
		log.Info("OTel Enabled")
		tools.PanicOnErr(internalOtel.Init(context.Background()))
	}

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Module: %s", m.GetName()))
		m.Init()
	}
}

func Run() {
	cfg := config.Get()
	gin.SetMode(string(cfg.Mode))
	r := gin.New()

	switch cfg.Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(sentry.Middleware())
	r.Use(middleware.SentryEnrichIP())
	r.Use(middleware.Cors())
	r.Use(middleware.Recovery())

	if cfg.OTel.Enable {
		r.Use(middleware.Trace())
	}

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Router: %s", m.GetName()))
		m.InitRouter(r.Group("/" + cfg.Prefix))
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("服务启动", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			tools.PanicOnErr(err)
		}
	}()

	<-ctx.Done()
	log.Info("正在关闭服务")
	shutdown(srv)
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP 服务关闭失败", "error", err)
	}
	if eventbus.Default != nil {
		if err := eventbus.Default.Close(); err != nil {
			log.Error("事件总线关闭失败", "error", err)
		}
	}
	if redis.Client != nil {
		_ = redis.Client.Close()
	}
	if config.Get().OTel.Enable {
		if err := internalOtel.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown TracerProvider", "error", err)
		}
	}
	sentry.Flush(2 * time.Second)
}
