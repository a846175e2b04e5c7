package evaluation

import (
	"time"

	"hackathon-platform/config"
	"hackathon-platform/internal/global/database"
	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/logger"
	"hackathon-platform/internal/global/redis"
	"hackathon-platform/internal/ranking"
	"hackathon-platform/internal/store"
)

var (
	log = logger.New("Evaluation")
	svc *Service
)

type ModuleEvaluation struct{}

func (m *ModuleEvaluation) GetName() string {
	return "Evaluation"
}

func (m *ModuleEvaluation) Init() {
	log = logger.New("Evaluation")
	ttl := time.Duration(config.Get().Leaderboard.CacheTTL) * time.Second
	svc = NewService(store.NewGorm(database.DB), eventbus.Active(), ranking.NewCache(redis.Client, ttl, log))
}
