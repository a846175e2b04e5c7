package model

import (
	"time"

	"gorm.io/gorm"
)

type Model struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FieldError 实体自校验失败时返回，Field 为出错字段
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}

// slot 用于"条件唯一"索引：满足条件时为 1，否则为 NULL（NULL 不参与唯一约束）
func slot(active bool) *int8 {
	if !active {
		return nil
	}
	one := int8(1)
	return &one
}
