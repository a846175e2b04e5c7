package response

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrorContextKey 是用于在 gin.Context 中存储错误对象的键
const ErrorContextKey = "error"

// Error 自定义错误类型，支持错误码、错误类别、消息、原始错误链和堆栈跟踪
type Error struct {
	Code    int32  `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"msg"`
	Origin  string `json:"origin"`
	// cause 保存原始错误，用于 Unwrap() 方法和 Sentry 堆栈提取
	cause error
	// stack 保存堆栈信息，用于 Sentry 堆栈提取
	stack pkgerrors.StackTrace
}

func newError(code int32, kind, msg string) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: msg,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("code:%d, kind:%s, msg:%s", e.Code, e.Kind, e.Message)
}

// GetCode 返回错误码，实现 sentry.CodedError 接口
func (e *Error) GetCode() int32 {
	return e.Code
}

// HTTPStatus 错误码的前三位即 HTTP 状态码
func (e *Error) HTTPStatus() int {
	return int(e.Code / 100)
}

// Unwrap 返回原始错误，支持 errors.Unwrap() 和 Sentry 错误链提取
func (e *Error) Unwrap() error {
	return e.cause
}

// StackTrace 返回堆栈跟踪，实现 pkg/errors 的 stackTracer 接口
func (e *Error) StackTrace() pkgerrors.StackTrace {
	if e.stack != nil {
		return e.stack
	}
	if e.cause != nil {
		type stackTracer interface {
			StackTrace() pkgerrors.StackTrace
		}
		if st, ok := e.cause.(stackTracer); ok {
			return st.StackTrace()
		}
	}
	return nil
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *Error) clone() *Error {
	c := *e
	return &c
}

// WithOrigin 附带原始错误（仅 debug 模式返回给前端），同时保留错误链供 Sentry 提取堆栈
func (e *Error) WithOrigin(err error) *Error {
	if err == nil {
		return e
	}

	wrappedErr := ensureStack(err)

	newErr := e.clone()
	newErr.Origin = fmt.Sprintf("%+v", wrappedErr)
	newErr.cause = wrappedErr

	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	if st, ok := wrappedErr.(stackTracer); ok {
		newErr.stack = st.StackTrace()
	}
	return newErr
}

// WithTips 向前端返回额外的提示信息（release 模式也可见）
func (e *Error) WithTips(details ...string) *Error {
	newErr := e.clone()
	newErr.Message = e.Message + " " + fmt.Sprintf("%v", details)
	return newErr
}

// Field 返回带有出错字段名的校验错误，字段名会出现在消息中
func (e *Error) Field(name, reason string) *Error {
	newErr := e.clone()
	newErr.Message = fmt.Sprintf("%s: %s %s", e.Message, name, reason)
	return newErr
}

// ensureStack 确保错误带有堆栈信息
func ensureStack(err error) error {
	if err == nil {
		return nil
	}
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	if _, ok := err.(stackTracer); ok {
		return err
	}
	return pkgerrors.WithStack(err)
}
