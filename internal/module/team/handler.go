package team

import (
	"hackathon-platform/internal/global/jwt"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/tools"

	"github.com/gin-gonic/gin"
)

// CreateTeam 创建队伍，创建者自动成为队长
func CreateTeam(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定创建队伍请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	team, err := svc.Create(c.Request.Context(), sub, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, team)
}

type joinReq struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

func JoinTeam(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	var req joinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	member, err := svc.Join(c.Request.Context(), sub, req.InviteCode)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, member)
}

func LeaveTeam(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("队伍ID无效"))
		return
	}
	if err := svc.Leave(c.Request.Context(), sub, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c)
}

func GetTeam(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("队伍ID无效"))
		return
	}
	team, err := svc.Get(c.Request.Context(), sub, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, team)
}

// ListTeams 赛事下的全部队伍
func ListTeams(c *gin.Context) {
	eventID, ok := tools.ParamID(c, "eventId")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("赛事ID无效"))
		return
	}
	teams, err := svc.List(c.Request.Context(), eventID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, teams)
}

type statusReq struct {
	Status model.TeamStatus `json:"status" binding:"required"`
}

func SetTeamStatus(c *gin.Context) {
	sub, _ := jwt.GetSubject(c)
	id, ok := tools.ParamID(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("队伍ID无效"))
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	team, err := svc.SetStatus(c.Request.Context(), sub, id, req.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, team)
}
