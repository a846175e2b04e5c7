package response

// 错误码 = HTTP 状态码 * 100 + 序号
var (
	ErrInvalidRequest = newError(40000, "invalid_request", "请求参数错误")
	ErrValidation     = newError(40001, "validation", "数据校验失败")
	ErrTokenInvalid   = newError(40100, "unauthenticated", "Token 无效")
	ErrUnauthorized   = newError(40101, "unauthenticated", "未登录或权限不足")
	ErrForbidden      = newError(40300, "forbidden", "无权限执行该操作")
	ErrClosedWindow   = newError(40301, "closed_window", "当前不在允许的时间窗口内")
	ErrNotFound       = newError(40400, "not_found", "资源不存在")
	ErrConflict       = newError(40900, "conflict", "资源冲突")
	ErrAlreadyExists  = newError(40901, "conflict", "资源已存在")
	ErrDatabase       = newError(50000, "internal", "数据库错误")
	ErrServerInternal = newError(50001, "internal", "服务器内部错误")
	ErrUpload         = newError(50200, "upload_failed", "文件上传失败")
)
