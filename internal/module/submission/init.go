package submission

import (
	"time"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/database"
	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/logger"
	"hackathon-platform/internal/global/redis"
	"hackathon-platform/internal/global/storage"
	"hackathon-platform/internal/ranking"
	"hackathon-platform/internal/store"
)

var (
	log = logger.New("Submission")
	svc *Service
)

type ModuleSubmission struct{}

func (m *ModuleSubmission) GetName() string {
	return "Submission"
}

func (m *ModuleSubmission) Init() {
	log = logger.New("Submission")
	cfg := config.Get()
	cache := ranking.NewCache(redis.Client, time.Duration(cfg.Leaderboard.CacheTTL)*time.Second, log)
	svc = NewService(store.NewGorm(database.DB), storage.Default, eventbus.Active(), cache, cfg.Storage.MaxFileSize)
}
