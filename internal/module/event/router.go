package event

import (
	"hackathon-platform/internal/global/middleware"
	"hackathon-platform/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleEvent) InitRouter(r *gin.RouterGroup) {
	eventGroup := r.Group("/event", middleware.Auth(model.RoleParticipant))

	eventGroup.GET("", ListEvents)
	eventGroup.GET("/:id", GetEvent)

	// 创建赛事需要平台 organizer 角色，其余管理操作按赛事组织者身份判断
	eventGroup.POST("", middleware.Auth(model.RoleOrganizer), CreateEvent)
	eventGroup.PUT("/:id", UpdateEvent)
	eventGroup.DELETE("/:id", DeleteEvent)
	eventGroup.POST("/:id/publish", PublishEvent)
	eventGroup.PUT("/:id/status", SetEventStatus)

	eventGroup.GET("/:id/judges", ListJudges)
	eventGroup.POST("/:id/judges", InviteJudge)
	eventGroup.POST("/:id/judges/accept", respondJudge(true))
	eventGroup.POST("/:id/judges/decline", respondJudge(false))
}
