package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/metrics"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/global/sentry/tracing"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/policy"
	"hackathon-platform/internal/ranking"
	"hackathon-platform/internal/scoring"
	"hackathon-platform/internal/store"

	"gorm.io/datatypes"
)

type Service struct {
	store       store.Store
	bus         eventbus.Publisher
	leaderboard ranking.Invalidator
	now         func() time.Time
}

func NewService(s store.Store, bus eventbus.Publisher, lb ranking.Invalidator) *Service {
	return &Service{store: s, bus: bus, leaderboard: lb, now: time.Now}
}

type CriterionScore struct {
	CriterionID string  `json:"criterion_id" binding:"required"`
	Score       float64 `json:"score"`
}

// SubmitReq 评分请求。score 为空时取各维度分数之和
type SubmitReq struct {
	Round    int                    `json:"round" binding:"omitempty,min=1"`
	Score    *float64               `json:"score"`
	Feedback string                 `json:"feedback" binding:"max=5000"`
	Status   model.EvaluationStatus `json:"status"`
	Criteria []CriterionScore       `json:"criteria" binding:"dive"`
}

// Result 评分写入结果，Created 区分新建与更新
type Result struct {
	Evaluation       *model.Evaluation `json:"evaluation"`
	Created          bool              `json:"created"`
	AverageScore     *float64          `json:"average_score"`
	TotalEvaluations int               `json:"total_evaluations"`
}

func fieldError(err error) error {
	var fe *model.FieldError
	if errors.As(err, &fe) {
		return response.ErrValidation.Field(fe.Field, fe.Reason)
	}
	return response.ErrValidation.WithOrigin(err)
}

func criteriaMap(items []CriterionScore) (map[string]float64, error) {
	m := make(map[string]float64, len(items))
	for _, item := range items {
		if _, ok := m[item.CriterionID]; ok {
			return nil, response.ErrValidation.Field(item.CriterionID, "重复评分")
		}
		m[item.CriterionID] = item.Score
	}
	return m, nil
}

// judging 读取作品与赛事，并检查评审身份与评审窗口（管理员不受窗口限制）
func (s *Service) judging(ctx context.Context, caller policy.Subject, submissionID uint) (*model.Submission, *model.Event, policy.Capabilities, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, nil, 0, response.FromDB(err, "作品不存在")
	}
	e, err := s.store.GetEvent(ctx, sub.EventID)
	if err != nil {
		return nil, nil, 0, response.FromDB(err, "赛事不存在")
	}
	caps, err := policy.Resolve(ctx, s.store, caller, e, 0)
	if err != nil {
		return nil, nil, 0, response.FromDB(err, "")
	}
	if !caps.Has(policy.CanJudge) {
		return nil, nil, 0, response.ErrForbidden.WithTips("只有评委、组织者或管理员可以评分")
	}
	if !e.IsJudgingOpen(s.now()) && !caps.Has(policy.CanAdmin) {
		return nil, nil, 0, response.ErrClosedWindow.WithTips("评审已结束")
	}
	return sub, e, caps, nil
}

// Submit 按 (作品, 评委, 轮次) 新建或更新评分，并在同一事务中重算作品分数
func (s *Service) Submit(ctx context.Context, caller policy.Subject, submissionID uint, req SubmitReq) (*Result, error) {
	sub, e, _, err := s.judging(ctx, caller, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == model.SubmissionDraft {
		return nil, response.ErrConflict.WithTips("草稿不能评分")
	}

	round := req.Round
	if round == 0 {
		round = 1
	}
	status := req.Status
	switch status {
	case "":
		status = model.EvaluationSubmitted
	case model.EvaluationDraft, model.EvaluationSubmitted:
	default:
		return nil, response.ErrValidation.Field("status", "取值无效")
	}
	criteria, err := criteriaMap(req.Criteria)
	if err != nil {
		return nil, err
	}
	score, err := scoring.Compute(e, req.Score, criteria)
	if err != nil {
		return nil, fieldError(err)
	}

	res := &Result{}
	start := time.Now()
	spanCtx, finish := tracing.StartSpan(ctx, "score.recalculate", fmt.Sprintf("submission %d round %d", sub.ID, round))
	err = s.store.Transaction(spanCtx, func(tx store.Store) error {
		if _, err := tx.LockSubmission(spanCtx, sub.ID); err != nil {
			return err
		}

		ev, err := tx.FindEvaluation(spanCtx, sub.ID, caller.UserID, round)
		switch {
		case errors.Is(err, store.ErrNotFound):
			ev = &model.Evaluation{SubmissionID: sub.ID, JudgeID: caller.UserID, Round: round}
			res.Created = true
		case err != nil:
			return err
		default:
			// 软删除后重新评分视为新建
			res.Created = ev.DeletedAt.Valid
		}
		ev.EventID = e.ID
		ev.Score = score
		ev.CriteriaScores = datatypes.NewJSONType(criteria)
		ev.Feedback = req.Feedback
		ev.Status = status
		if ev.ID == 0 {
			err = tx.CreateEvaluation(spanCtx, ev)
		} else {
			err = tx.SaveEvaluation(spanCtx, ev)
		}
		if err != nil {
			return err
		}
		res.Evaluation = ev

		res.AverageScore, res.TotalEvaluations, err = scoring.Recalculate(spanCtx, tx, sub.ID)
		return err
	})
	finish()
	metrics.RecalculationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Recalculations.WithLabelValues("error").Inc()
		log.Error("评分写入失败，已回滚", "submission_id", sub.ID, "judge_id", caller.UserID, "round", round, "error", err)
		return nil, response.FromDB(err, "作品不存在")
	}
	metrics.Recalculations.WithLabelValues("ok").Inc()

	result := "updated"
	if res.Created {
		result = "created"
	}
	metrics.EvaluationsRecorded.WithLabelValues(result).Inc()
	log.Info("评分已记录", "submission_id", sub.ID, "judge_id", caller.UserID, "round", round, "result", result)

	s.leaderboard.Invalidate(ctx, e.ID)
	err = s.bus.Publish(ctx, eventbus.TopicEvaluationRecorded, eventbus.EvaluationRecorded{
		EvaluationID:     res.Evaluation.ID,
		SubmissionID:     sub.ID,
		EventID:          e.ID,
		JudgeID:          caller.UserID,
		Round:            round,
		Score:            score,
		Created:          res.Created,
		AverageScore:     res.AverageScore,
		TotalEvaluations: res.TotalEvaluations,
		At:               s.now(),
	})
	if err != nil {
		log.Warn("发布评分事件失败", "submission_id", sub.ID, "error", err)
	}
	return res, nil
}

// List 组织者与管理员看到全部评分，评委只看到自己的
func (s *Service) List(ctx context.Context, caller policy.Subject, submissionID uint) ([]model.Evaluation, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, response.FromDB(err, "作品不存在")
	}
	e, err := s.store.GetEvent(ctx, sub.EventID)
	if err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	caps, err := policy.Resolve(ctx, s.store, caller, e, 0)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	if !caps.Has(policy.CanJudge) {
		return nil, response.ErrForbidden.WithTips("无权查看评分")
	}
	evals, err := s.store.ListEvaluations(ctx, submissionID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	if caps.Has(policy.CanOrganize) {
		return evals, nil
	}
	own := make([]model.Evaluation, 0, len(evals))
	for _, ev := range evals {
		if ev.JudgeID == caller.UserID {
			own = append(own, ev)
		}
	}
	return own, nil
}

// Delete 评委在评审窗口内删除自己的评分，管理员不受限制；删除后重算作品分数
func (s *Service) Delete(ctx context.Context, caller policy.Subject, id uint) error {
	ev, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return response.FromDB(err, "评分不存在")
	}
	_, e, caps, err := s.judging(ctx, caller, ev.SubmissionID)
	if err != nil {
		return err
	}
	if ev.JudgeID != caller.UserID && !caps.Has(policy.CanAdmin) {
		return response.ErrForbidden.WithTips("只能删除自己的评分")
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.LockSubmission(ctx, ev.SubmissionID); err != nil {
			return err
		}
		if err := tx.DeleteEvaluation(ctx, id); err != nil {
			return err
		}
		_, _, err := scoring.Recalculate(ctx, tx, ev.SubmissionID)
		return err
	})
	if err != nil {
		metrics.Recalculations.WithLabelValues("error").Inc()
		return response.FromDB(err, "评分不存在")
	}
	metrics.Recalculations.WithLabelValues("ok").Inc()
	log.Info("评分已删除", "evaluation_id", id, "submission_id", ev.SubmissionID, "user_id", caller.UserID)
	s.leaderboard.Invalidate(ctx, e.ID)
	return nil
}
