package team

import (
	"hackathon-platform/internal/global/database"
	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/logger"
	"hackathon-platform/internal/store"
)

var (
	log = logger.New("Team")
	svc *Service
)

type ModuleTeam struct{}

func (m *ModuleTeam) GetName() string {
	return "Team"
}

func (m *ModuleTeam) Init() {
	log = logger.New("Team")
	svc = NewService(store.NewGorm(database.DB), eventbus.Active())
}
