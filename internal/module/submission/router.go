package submission

import (
	"hackathon-platform/internal/global/middleware"
	"hackathon-platform/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleSubmission) InitRouter(r *gin.RouterGroup) {
	submissionGroup := r.Group("/submission", middleware.Auth(model.RoleParticipant))

	submissionGroup.POST("", CreateSubmission)
	submissionGroup.POST("/presign", PresignUpload)
	submissionGroup.GET("/event/:eventId", ListEventSubmissions)
	submissionGroup.GET("/team/:teamId", ListTeamSubmissions)

	submissionGroup.GET("/:id", GetSubmission)
	submissionGroup.PUT("/:id", UpdateSubmission)
	submissionGroup.DELETE("/:id", DeleteSubmission)
	submissionGroup.POST("/:id/submit", SubmitDraft)
	submissionGroup.PUT("/:id/status", SetSubmissionStatus)

	submissionGroup.GET("/:id/comments", ListComments)
	submissionGroup.POST("/:id/comments", AddComment)
}
