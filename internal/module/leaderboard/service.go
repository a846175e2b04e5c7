package leaderboard

import (
	"context"

	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/policy"
	"hackathon-platform/internal/ranking"
	"hackathon-platform/internal/store"
)

type Service struct {
	store  store.Store
	ranker *ranking.Ranker
}

func NewService(s store.Store, cache *ranking.Cache) *Service {
	return &Service{store: s, ranker: ranking.NewRanker(s, cache)}
}

// event 读取赛事并解析调用者能力，匿名调用者 caller 为 nil
func (s *Service) event(ctx context.Context, caller *policy.Subject, eventID uint) (*model.Event, policy.Capabilities, error) {
	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, 0, response.FromDB(err, "赛事不存在")
	}
	var caps policy.Capabilities
	if caller != nil {
		caps, err = policy.Resolve(ctx, s.store, *caller, e, 0)
		if err != nil {
			return nil, 0, response.FromDB(err, "")
		}
	}
	if !e.IsPublished && !caps.Has(policy.CanOrganize) {
		return nil, 0, response.ErrNotFound.WithTips("赛事不存在")
	}
	return e, caps, nil
}

// Get 返回一页排行榜。未公开的排行榜只有组织者与管理员可见
func (s *Service) Get(ctx context.Context, caller *policy.Subject, eventID uint, limit, offset int) (*ranking.Board, error) {
	e, caps, err := s.event(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	if !e.IsLeaderboardPublic && !caps.Has(policy.CanOrganize) {
		if caller == nil {
			return nil, response.ErrUnauthorized.WithTips("排行榜未公开")
		}
		return nil, response.ErrForbidden.WithTips("排行榜未公开")
	}
	board, err := s.ranker.Page(ctx, e.ID, limit, offset)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	return board, nil
}

// Export 完整排行，仅组织者与管理员可导出
func (s *Service) Export(ctx context.Context, caller policy.Subject, eventID uint) (*model.Event, []ranking.Entry, error) {
	e, caps, err := s.event(ctx, &caller, eventID)
	if err != nil {
		return nil, nil, err
	}
	if !caps.Has(policy.CanOrganize) {
		return nil, nil, response.ErrForbidden.WithTips("只有组织者可以导出排行榜")
	}
	entries, err := s.ranker.All(ctx, e.ID)
	if err != nil {
		return nil, nil, response.FromDB(err, "")
	}
	return e, entries, nil
}
