package evaluation

import (
	"hackathon-platform/internal/global/middleware"
	"hackathon-platform/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleEvaluation) InitRouter(r *gin.RouterGroup) {
	auth := middleware.Auth(model.RoleParticipant)

	r.POST("/submission/:id/evaluations", auth, SubmitEvaluation)
	r.GET("/submission/:id/evaluations", auth, ListEvaluations)
	r.DELETE("/evaluation/:id", auth, DeleteEvaluation)
}
