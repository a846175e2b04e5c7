// Package ranking 排行榜：按平均分排序已提交作品并分页，结果缓存在 Redis
package ranking

import (
	"context"
	"math"

	"hackathon-platform/internal/global/metrics"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/store"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Entry 排行榜中的一行，同时作为导出表格的行
type Entry struct {
	Rank            int      `json:"rank" excel:"排名"`
	SubmissionID    uint     `json:"submission_id" excel:"作品ID"`
	TeamID          uint     `json:"team_id" excel:"队伍ID"`
	Title           string   `json:"title" excel:"作品名称"`
	AverageScore    *float64 `json:"average_score" excel:"平均分"`
	EvaluationCount int      `json:"evaluation_count" excel:"评分数"`
}

type Board struct {
	EventID uint    `json:"event_id"`
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Normalize 补齐默认 limit 并限制上限
func Normalize(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Round2 保留两位小数，仅用于展示
func Round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*100) / 100
	return &r
}

// Rank 为已排好序的一页作品编号，名次从 offset+1 开始
func Rank(subs []model.Submission, offset int) []Entry {
	entries := make([]Entry, 0, len(subs))
	for i, s := range subs {
		entries = append(entries, Entry{
			Rank:            offset + i + 1,
			SubmissionID:    s.ID,
			TeamID:          s.TeamID,
			Title:           s.Title,
			AverageScore:    Round2(s.AverageScore),
			EvaluationCount: s.TotalEvaluations,
		})
	}
	return entries
}

type Ranker struct {
	store store.Store
	cache *Cache
}

// NewRanker cache 可以为 nil
func NewRanker(s store.Store, cache *Cache) *Ranker {
	return &Ranker{store: s, cache: cache}
}

// Page 返回一页排行榜，优先读缓存
func (r *Ranker) Page(ctx context.Context, eventID uint, limit, offset int) (*Board, error) {
	limit, offset = Normalize(limit, offset)
	board, version, ok := r.cache.Get(ctx, eventID, limit, offset)
	if ok {
		metrics.LeaderboardCache.WithLabelValues("hit").Inc()
		return board, nil
	}
	metrics.LeaderboardCache.WithLabelValues("miss").Inc()

	subs, total, err := r.store.ListRankedSubmissions(ctx, eventID, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	board = &Board{
		EventID: eventID,
		Entries: Rank(subs, offset),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
	r.cache.Set(ctx, board, version)
	return board, nil
}

// All 完整排行，用于导出，不经过缓存
func (r *Ranker) All(ctx context.Context, eventID uint) ([]Entry, error) {
	subs, _, err := r.store.ListRankedSubmissions(ctx, eventID, store.Page{})
	if err != nil {
		return nil, err
	}
	return Rank(subs, 0), nil
}
