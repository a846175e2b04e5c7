package event

import (
	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/store"
	"hackathon-platform/tools"

	"github.com/gin-gonic/gin"
)

// CreateEvent 组织者创建赛事，初始为草稿
func CreateEvent(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定创建赛事请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	event, err := svc.Create(c.Request.Context(), sub, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, event)
}

func UpdateEvent(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	event, err := svc.Update(c.Request.Context(), sub, id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, event)
}

func GetEvent(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	event, err := svc.Get(c.Request.Context(), sub, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, event)
}

// ListEvents 获取赛事列表（支持分页）
func ListEvents(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	var req tools.PageQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	limit, offset := req.LimitOffset()
	events, total, err := svc.List(c.Request.Context(), sub, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"events":    events,
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}

func DeleteEvent(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	if err := svc.Delete(c.Request.Context(), sub, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c)
}

func PublishEvent(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	event, err := svc.Publish(c.Request.Context(), sub, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, event)
}

type statusReq struct {
	Status model.EventStatus `json:"status" binding:"required"`
}

func SetEventStatus(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	event, err := svc.SetStatus(c.Request.Context(), sub, id, req.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, event)
}

type inviteReq struct {
	UserID uint `json:"user_id" binding:"required"`
}

func InviteJudge(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	var req inviteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	judge, err := svc.InviteJudge(c.Request.Context(), sub, id, req.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, judge)
}

func respondJudge(accept bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, _ := jwt.GetSubject(c)
		id, ok := tools.ParamID(c, "id")
		if !ok {
			response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
			return
		}
		judge, err := svc.RespondJudge(c.Request.Context(), sub, id, accept)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, judge)
	}
}

func ListJudges(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	judges, err := svc.ListJudges(c.Request.Context(), sub, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, judges)
}
