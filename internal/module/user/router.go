package user

import (
	"hackathon-platform/internal/global/middleware"
	"hackathon-platform/internal/model"

	"github.com/gin-gonic/gin"
)

// InitRouter 用户由外部认证签发令牌，这里只提供资料查询
func (u *ModuleUser) InitRouter(r *gin.RouterGroup) {
	userGroup := r.Group("/user", middleware.Auth(model.RoleParticipant))

	userGroup.GET("/me", GetMe)
	userGroup.GET("/:id", GetUser)
}
