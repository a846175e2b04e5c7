package leaderboard

import (
	"fmt"
	"time"

	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/policy"
	"hackathon-platform/tools"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type pageReq struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func GetLeaderboard(c *gin.Context) {
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	var req pageReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	var caller *policy.Subject
	if sub, exist := jwt.GetSubject(c); exist {
		caller = &sub
	}
	board, err := svc.Get(c.Request.Context(), caller, id, req.Limit, req.Offset)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, board)
}

// ExportLeaderboard 导出完整排行榜为 xlsx
func ExportLeaderboard(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	e, entries, err := svc.Export(c.Request.Context(), sub, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("关闭 excel 文件失败", "error", err)
		}
	}()
	if err := tools.ExportToExcel(f, "排行榜", entries); err != nil {
		log.Error("导出 excel 错误", "event_id", id, "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}

	filename := fmt.Sprintf("%s_排行榜_%s.xlsx", e.Title, time.Now().Format("20060102"))
	tools.SetAttachment(c, filename, tools.ExcelContentType)
	c.Header("Cache-Control", "must-revalidate")
	if err := f.Write(c.Writer); err != nil {
		log.Error("写出 excel 错误", "event_id", id, "error", err)
	}
}
