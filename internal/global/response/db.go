package response

import (
	"errors"

	"gorm.io/gorm"
)

// FromDB 将存储层错误映射为业务错误；已是 *Error 的原样返回，tips 用于 not found 时提示资源名称
func FromDB(err error, tips string) error {
	if err == nil {
		return nil
	}
	var e *Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, gorm.ErrRecordNotFound):
		if tips == "" {
			return ErrNotFound
		}
		return ErrNotFound.WithTips(tips)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict.WithOrigin(err)
	default:
		return ErrDatabase.WithOrigin(err)
	}
}
