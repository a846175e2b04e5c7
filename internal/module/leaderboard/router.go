package leaderboard

import (
	"hackathon-platform/internal/global/middleware"
	"hackathon-platform/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleLeaderboard) InitRouter(r *gin.RouterGroup) {
	r.GET("/event/:id/leaderboard", middleware.OptionalAuth(), GetLeaderboard)
	r.GET("/event/:id/leaderboard/export", middleware.Auth(model.RoleParticipant), ExportLeaderboard)
}
