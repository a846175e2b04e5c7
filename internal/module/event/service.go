package event

import (
	"context"
	"errors"
	"time"

	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/policy"
	"hackathon-platform/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// CreateReq 创建赛事请求，时间均为 RFC3339
type CreateReq struct {
	Title               string            `json:"title" binding:"required,max=200"`
	Description         string            `json:"description"`
	StartDate           time.Time         `json:"start_date" binding:"required"`
	EndDate             time.Time         `json:"end_date" binding:"required"`
	RegistrationStart   *time.Time        `json:"registration_start"`
	RegistrationEnd     time.Time         `json:"registration_end" binding:"required"`
	SubmissionDeadline  time.Time         `json:"submission_deadline" binding:"required"`
	JudgingEnd          *time.Time        `json:"judging_end"`
	MinTeamSize         int               `json:"min_team_size"`
	MaxTeamSize         int               `json:"max_team_size"`
	JudgingCriteria     []model.Criterion `json:"judging_criteria"`
	IsLeaderboardPublic bool              `json:"is_leaderboard_public"`
}

// UpdateReq 使用指针类型支持部分更新
type UpdateReq struct {
	Title               *string            `json:"title"`
	Description         *string            `json:"description"`
	StartDate           *time.Time         `json:"start_date"`
	EndDate             *time.Time         `json:"end_date"`
	RegistrationStart   *time.Time         `json:"registration_start"`
	RegistrationEnd     *time.Time         `json:"registration_end"`
	SubmissionDeadline  *time.Time         `json:"submission_deadline"`
	JudgingEnd          *time.Time         `json:"judging_end"`
	MinTeamSize         *int               `json:"min_team_size"`
	MaxTeamSize         *int               `json:"max_team_size"`
	JudgingCriteria     *[]model.Criterion `json:"judging_criteria"`
	IsLeaderboardPublic *bool              `json:"is_leaderboard_public"`
}

func validate(e *model.Event) error {
	if err := e.Validate(); err != nil {
		var fe *model.FieldError
		if errors.As(err, &fe) {
			return response.ErrValidation.Field(fe.Field, fe.Reason)
		}
		return response.ErrValidation.WithOrigin(err)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, sub policy.Subject, req CreateReq) (*model.Event, error) {
	e := &model.Event{
		Title:               req.Title,
		Description:         req.Description,
		OrganizerID:         sub.UserID,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		RegistrationEnd:     req.RegistrationEnd,
		SubmissionDeadline:  req.SubmissionDeadline,
		JudgingEnd:          req.JudgingEnd,
		MinTeamSize:         req.MinTeamSize,
		MaxTeamSize:         req.MaxTeamSize,
		JudgingCriteria:     req.JudgingCriteria,
		Status:              model.EventDraft,
		IsLeaderboardPublic: req.IsLeaderboardPublic,
	}
	if req.RegistrationStart != nil {
		e.RegistrationStart = *req.RegistrationStart
	}
	if e.MinTeamSize == 0 {
		e.MinTeamSize = 1
	}
	if e.MaxTeamSize == 0 {
		e.MaxTeamSize = 5
	}
	if err := validate(e); err != nil {
		return nil, err
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, response.FromDB(err, "")
	}
	log.Info("赛事创建成功", "event_id", e.ID, "organizer_id", sub.UserID)
	return e, nil
}

// loadForOrganizer 读取赛事并要求调用者是其组织者或管理员
func (s *Service) loadForOrganizer(ctx context.Context, sub policy.Subject, id uint) (*model.Event, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	caps, err := policy.Resolve(ctx, s.store, sub, e, 0)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	if !caps.Has(policy.CanOrganize) {
		return nil, response.ErrForbidden.WithTips("只有赛事组织者或管理员可以操作")
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, sub policy.Subject, id uint, req UpdateReq) (*model.Event, error) {
	e, err := s.loadForOrganizer(ctx, sub, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.StartDate != nil {
		e.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		e.EndDate = *req.EndDate
	}
	if req.RegistrationStart != nil {
		e.RegistrationStart = *req.RegistrationStart
	}
	if req.RegistrationEnd != nil {
		e.RegistrationEnd = *req.RegistrationEnd
	}
	if req.SubmissionDeadline != nil {
		e.SubmissionDeadline = *req.SubmissionDeadline
	}
	if req.JudgingEnd != nil {
		e.JudgingEnd = req.JudgingEnd
	}
	if req.MinTeamSize != nil {
		e.MinTeamSize = *req.MinTeamSize
	}
	if req.MaxTeamSize != nil {
		e.MaxTeamSize = *req.MaxTeamSize
	}
	if req.JudgingCriteria != nil {
		e.JudgingCriteria = *req.JudgingCriteria
	}
	if req.IsLeaderboardPublic != nil {
		e.IsLeaderboardPublic = *req.IsLeaderboardPublic
	}

	if err := validate(e); err != nil {
		return nil, err
	}
	if err := s.store.SaveEvent(ctx, e); err != nil {
		return nil, response.FromDB(err, "")
	}
	return e, nil
}

// Get 未发布的赛事只对组织者和管理员可见
func (s *Service) Get(ctx context.Context, sub policy.Subject, id uint) (*model.Event, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	if !e.IsPublished && e.OrganizerID != sub.UserID && sub.Role != model.RoleAdmin {
		return nil, response.ErrNotFound.WithTips("赛事不存在")
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, sub policy.Subject, page store.Page) ([]model.Event, int64, error) {
	f := store.EventFilter{Page: page, PublishedOnly: sub.Role != model.RoleAdmin}
	if sub.Role == model.RoleOrganizer {
		f.OrganizerID = sub.UserID
	}
	events, total, err := s.store.ListEvents(ctx, f)
	if err != nil {
		return nil, 0, response.FromDB(err, "")
	}
	return events, total, nil
}

func (s *Service) Delete(ctx context.Context, sub policy.Subject, id uint) error {
	if _, err := s.loadForOrganizer(ctx, sub, id); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return response.FromDB(err, "赛事不存在")
	}
	log.Info("赛事已删除", "event_id", id, "user_id", sub.UserID)
	return nil
}

// Publish 发布赛事，草稿状态同时进入 upcoming
func (s *Service) Publish(ctx context.Context, sub policy.Subject, id uint) (*model.Event, error) {
	e, err := s.loadForOrganizer(ctx, sub, id)
	if err != nil {
		return nil, err
	}
	if e.Status == model.EventCancelled {
		return nil, response.ErrConflict.WithTips("赛事已取消")
	}
	e.IsPublished = true
	if e.Status == model.EventDraft {
		e.Status = model.EventUpcoming
	}
	if err := s.store.SaveEvent(ctx, e); err != nil {
		return nil, response.FromDB(err, "")
	}
	return e, nil
}

func (s *Service) SetStatus(ctx context.Context, sub policy.Subject, id uint, status model.EventStatus) (*model.Event, error) {
	if !status.Valid() {
		return nil, response.ErrValidation.Field("status", "取值无效")
	}
	e, err := s.loadForOrganizer(ctx, sub, id)
	if err != nil {
		return nil, err
	}
	e.Status = status
	if err := s.store.SaveEvent(ctx, e); err != nil {
		return nil, response.FromDB(err, "")
	}
	return e, nil
}

// InviteJudge 邀请用户担任评委；已拒绝的邀请会重新变为 pending
func (s *Service) InviteJudge(ctx context.Context, sub policy.Subject, eventID, userID uint) (*model.EventJudge, error) {
	if _, err := s.loadForOrganizer(ctx, sub, eventID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, response.FromDB(err, "用户不存在")
	}

	judge, err := s.store.GetEventJudge(ctx, eventID, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		judge = &model.EventJudge{EventID: eventID, UserID: userID}
	case err != nil:
		return nil, response.FromDB(err, "")
	case judge.Status != model.JudgeDeclined:
		return nil, response.ErrAlreadyExists.WithTips("该用户已被邀请")
	}
	judge.InvitedBy = sub.UserID
	judge.Status = model.JudgePending
	if err := s.store.SaveEventJudge(ctx, judge); err != nil {
		return nil, response.FromDB(err, "")
	}
	log.Info("已邀请评委", "event_id", eventID, "user_id", userID)
	return judge, nil
}

// RespondJudge 被邀请者接受或拒绝评委邀请
func (s *Service) RespondJudge(ctx context.Context, sub policy.Subject, eventID uint, accept bool) (*model.EventJudge, error) {
	judge, err := s.store.GetEventJudge(ctx, eventID, sub.UserID)
	if err != nil {
		return nil, response.FromDB(err, "评委邀请不存在")
	}
	if judge.Status != model.JudgePending {
		return nil, response.ErrConflict.WithTips("邀请已处理")
	}
	judge.Status = model.JudgeDeclined
	if accept {
		judge.Status = model.JudgeAccepted
	}
	if err := s.store.SaveEventJudge(ctx, judge); err != nil {
		return nil, response.FromDB(err, "")
	}
	return judge, nil
}

func (s *Service) ListJudges(ctx context.Context, sub policy.Subject, eventID uint) ([]model.EventJudge, error) {
	if _, err := s.loadForOrganizer(ctx, sub, eventID); err != nil {
		return nil, err
	}
	judges, err := s.store.ListEventJudges(ctx, eventID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	return judges, nil
}
