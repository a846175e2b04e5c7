package module

import (
	"hackathon-platform/internal/module/evaluation"
	"hackathon-platform/internal/module/event"
	"hackathon-platform/internal/module/leaderboard"
	"hackathon-platform/internal/module/metrics"
	"hackathon-platform/internal/module/notification"
	"hackathon-platform/internal/module/ping"
	"hackathon-platform/internal/module/submission"
	"hackathon-platform/internal/module/team"
	"hackathon-platform/internal/module/user"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init()
	InitRouter(r *gin.RouterGroup)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// Register your module here
	registerModule([]Module{
		&user.ModuleUser{},
		&ping.ModulePing{},
		&metrics.ModuleMetrics{},
		&event.ModuleEvent{},
		&team.ModuleTeam{},
		&submission.ModuleSubmission{},
		&evaluation.ModuleEvaluation{},
		&leaderboard.ModuleLeaderboard{},
		&notification.ModuleNotification{},
	})
}
