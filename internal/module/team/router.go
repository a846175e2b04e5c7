package team

import (
	"hackathon-platform/internal/global/middleware"
	"hackathon-platform/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleTeam) InitRouter(r *gin.RouterGroup) {
	teamGroup := r.Group("/team", middleware.Auth(model.RoleParticipant))

	teamGroup.POST("", CreateTeam)
	teamGroup.POST("/join", JoinTeam)
	teamGroup.GET("/event/:eventId", ListTeams)
	teamGroup.GET("/:id", GetTeam)
	teamGroup.POST("/:id/leave", LeaveTeam)
	teamGroup.PUT("/:id/status", SetTeamStatus)
}
