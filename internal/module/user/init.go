package user

import (
	"hackathon-platform/internal/global/database"
	"hackathon-platform/internal/global/logger"
	"hackathon-platform/internal/store"
)

var (
	log = logger.New("User")
	svc *Service
)

type ModuleUser struct{}

func (u *ModuleUser) GetName() string {
	return "User"
}

func (u *ModuleUser) Init() {
	log = logger.New("User")
	svc = NewService(store.NewGorm(database.DB))
}
