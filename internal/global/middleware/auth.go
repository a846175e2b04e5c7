package middleware

import (
	"strings"

	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"

	"github.com/gin-gonic/gin"
)

// Auth 校验 Bearer 令牌，平台角色低于 minRole 时拒绝
func Auth(minRole model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取 Authorization 头
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		// 解析 token
		payload, valid := jwt.ParseToken(token)
		if !valid {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		if payload.Role.Level() < minRole.Level() {
			response.Fail(c, response.ErrForbidden.WithTips("平台角色权限不足"))
			return
		}
		c.Set(jwt.PayloadKey, payload)
		sentryUser(c, payload)
		c.Next()
	}
}

// OptionalAuth 带有效令牌时注入身份，否则以匿名身份继续
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
			if payload, valid := jwt.ParseToken(token); valid {
				c.Set(jwt.PayloadKey, payload)
				sentryUser(c, payload)
			}
		}
		c.Next()
	}
}
