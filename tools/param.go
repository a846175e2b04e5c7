package tools

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID 读取路径参数中的正整数 ID
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// PageQuery 列表接口通用的分页参数
type PageQuery struct {
	Page     int `form:"page" json:"page"`           // 页码，默认为1
	PageSize int `form:"page_size" json:"page_size"` // 每页大小，默认为10，最大100
}

// LimitOffset 补齐默认值并换算为 limit/offset
func (q *PageQuery) LimitOffset() (limit, offset int) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 10
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	return q.PageSize, (q.Page - 1) * q.PageSize
}
