package response

import (
	"errors"
	"fmt"
	"net/http"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/sentry"

	"github.com/gin-gonic/gin"
)

// ResponseBody 统一响应体
type ResponseBody struct {
	Code   int32  `json:"code"`
	Kind   string `json:"kind,omitempty"`
	Msg    string `json:"msg"`
	Origin string `json:"origin,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Success 返回 200；data 可省略
func Success(c *gin.Context, data ...any) {
	write(c, http.StatusOK, data...)
}

// Created 返回 201，用于新建资源
func Created(c *gin.Context, data ...any) {
	write(c, http.StatusCreated, data...)
}

func write(c *gin.Context, status int, data ...any) {
	body := ResponseBody{Code: int32(status), Msg: "success"}
	if len(data) > 0 {
		body.Data = data[0]
	}
	c.JSON(status, body)
}

// Fail 将错误转换为统一响应体，非 *Error 一律视为服务器内部错误
func Fail(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = ErrServerInternal.WithOrigin(err)
	}
	c.Set(ErrorContextKey, e)

	body := ResponseBody{
		Code: e.Code,
		Kind: e.Kind,
		Msg:  e.Message,
	}
	if config.Get().Mode == config.ModeDebug {
		body.Origin = e.Origin
	}

	if e.HTTPStatus() >= http.StatusInternalServerError {
		sentry.CaptureException(c, e)
	}
	c.AbortWithStatusJSON(e.HTTPStatus(), body)
}

// Recovery 捕获 panic 并以 500 响应，供 middleware.Recovery 使用
func Recovery(c *gin.Context) {
	if r := recover(); r != nil {
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("%v", r)
		}
		Fail(c, ErrServerInternal.WithOrigin(err))
	}
}
