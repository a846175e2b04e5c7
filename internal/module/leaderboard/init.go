package leaderboard

import (
	"time"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/database"
	"hackathon-platform/internal/global/logger"
	"hackathon-platform/internal/global/redis"
	"hackathon-platform/internal/ranking"
	"hackathon-platform/internal/store"
)

var (
	log = logger.New("Leaderboard")
	svc *Service
)

type ModuleLeaderboard struct{}

func (m *ModuleLeaderboard) GetName() string {
	return "Leaderboard"
}

func (m *ModuleLeaderboard) Init() {
	log = logger.New("Leaderboard")
	ttl := time.Duration(config.Get().Leaderboard.CacheTTL) * time.Second
	svc = NewService(store.NewGorm(database.DB), ranking.NewCache(redis.Client, ttl, log))
}
