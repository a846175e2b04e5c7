package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hackathon-platform/internal/global/jwt"

	sentrylib "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// maxErrorBodySize 错误响应体在日志中保留的最大长度
const maxErrorBodySize = 2 * 1024

// quietRoutes 探活与指标抓取只在出错时记录
var quietRoutes = map[string]bool{
	"/ping":    true,
	"/metrics": true,
}

// errorBodyWriter 只缓存 JSON 响应体的前 maxErrorBodySize 字节，排行榜导出等二进制响应不缓存
type errorBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *errorBodyWriter) Write(b []byte) (int, error) {
	if remaining := maxErrorBodySize - w.body.Len(); remaining > 0 &&
		strings.HasPrefix(w.Header().Get("Content-Type"), gin.MIMEJSON) {
		w.body.Write(b[:min(len(b), remaining)])
	}
	return w.ResponseWriter.Write(b)
}

// Logger 访问日志。按路由模板记录，附带调用者身份；4xx 记 Warn 并带上错误响应体，5xx 记 Error
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		w := &errorBodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if quietRoutes[route] && status < http.StatusBadRequest {
			return
		}

		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if sub, ok := jwt.GetSubject(c); ok {
			attrs = append(attrs, "user_id", sub.UserID, "role", sub.Role)
		}
		if status >= http.StatusBadRequest && w.body.Len() > 0 {
			attrs = append(attrs, "response_body", w.body.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("HTTP Request", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("HTTP Request", attrs...)
		default:
			log.Info("HTTP Request", attrs...)
		}
	}
}

// SentryEnrichIP 将 client IP 注入 Sentry Scope，放在 sentry.Middleware() 之后
func SentryEnrichIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.ConfigureScope(func(scope *sentrylib.Scope) {
				clientIP := c.ClientIP()
				scope.SetUser(sentrylib.User{IPAddress: clientIP})
				scope.SetTag("client_ip", clientIP)
				if forwardedFor := c.GetHeader("X-Forwarded-For"); forwardedFor != "" {
					scope.SetTag("x_forwarded_for", forwardedFor)
				}
			})
		}
		c.Next()
	}
}

// sentryUser 鉴权通过后把用户 ID 与平台角色补充到 Sentry Scope
func sentryUser(c *gin.Context, claims *jwt.Claims) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.ConfigureScope(func(scope *sentrylib.Scope) {
		scope.SetUser(sentrylib.User{
			ID:        strconv.FormatUint(uint64(claims.UserID), 10),
			Username:  claims.Name,
			IPAddress: c.ClientIP(),
		})
		scope.SetTag("role", string(claims.Role))
	})
}
