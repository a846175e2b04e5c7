package event

import (
	"hackathon-platform/internal/global/database"
	"hackathon-platform/internal/global/logger"
	"hackathon-platform/internal/store"
)

var (
	log = logger.New("Event")
	svc *Service
)

type ModuleEvent struct{}

func (m *ModuleEvent) GetName() string {
	return "Event"
}

func (m *ModuleEvent) Init() {
	log = logger.New("Event")
	svc = NewService(store.NewGorm(database.DB))
}
