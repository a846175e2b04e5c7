package submission

import (
	"context"
	"mime/multipart"
	"time"

	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/metrics"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/global/storage"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/policy"
	"hackathon-platform/internal/ranking"
	"hackathon-platform/internal/store"
)

type Service struct {
	store       store.Store
	storage     storage.Storage
	bus         eventbus.Publisher
	leaderboard ranking.Invalidator
	maxFileSize int64
	now         func() time.Time
}

func NewService(s store.Store, st storage.Storage, bus eventbus.Publisher, lb ranking.Invalidator, maxFileSize int64) *Service {
	return &Service{
		store:       s,
		storage:     st,
		bus:         bus,
		leaderboard: lb,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// CreateReq 支持 JSON 与 multipart 两种提交方式，multipart 时附件字段名为 file
type CreateReq struct {
	EventID     uint   `form:"event_id" json:"event_id" binding:"required"`
	TeamID      uint   `form:"team_id" json:"team_id" binding:"required"`
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Description string `form:"description" json:"description"`
	GithubURL   string `form:"github_url" json:"github_url" binding:"omitempty,url,max=500"`
	VideoURL    string `form:"video_url" json:"video_url" binding:"omitempty,url,max=500"`
	FileURL     string `form:"file_url" json:"file_url" binding:"omitempty,url,max=500"` // 预签名直传后回填
	Draft       bool   `form:"draft" json:"draft"`
}

type UpdateReq struct {
	Title       *string `form:"title" json:"title" binding:"omitempty,max=200"`
	Description *string `form:"description" json:"description"`
	GithubURL   *string `form:"github_url" json:"github_url" binding:"omitempty,max=500"`
	VideoURL    *string `form:"video_url" json:"video_url" binding:"omitempty,max=500"`
}

// scope 调用者针对某作品的上下文
type scope struct {
	sub   *model.Submission
	event *model.Event
	caps  policy.Capabilities
}

func (s *Service) load(ctx context.Context, caller policy.Subject, id uint) (*scope, error) {
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return nil, response.FromDB(err, "作品不存在")
	}
	e, err := s.store.GetEvent(ctx, sub.EventID)
	if err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	caps, err := policy.Resolve(ctx, s.store, caller, e, sub.TeamID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	return &scope{sub: sub, event: e, caps: caps}, nil
}

// memberWindow 队员修改作品时要求提交窗口开放
func (s *Service) memberWindow(sc *scope) error {
	if !sc.caps.Has(policy.CanSubmit) {
		return response.ErrForbidden.WithTips("只有队伍成员可以修改作品")
	}
	if !sc.event.IsSubmissionOpen(s.now()) {
		return response.ErrClosedWindow.WithTips("提交已截止")
	}
	return nil
}

func (s *Service) upload(ctx context.Context, file *multipart.FileHeader, into *model.Submission) error {
	if file == nil {
		return nil
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return response.ErrValidation.Field("file", "超过大小限制")
	}
	uploaded, err := s.storage.Upload(ctx, file)
	if err != nil {
		log.Error("作品附件上传失败", "filename", file.Filename, "error", err)
		return response.ErrUpload.WithOrigin(err)
	}
	into.FileURL = uploaded.URL
	into.FileType = uploaded.ContentType
	into.FileSize = uploaded.Size
	return nil
}

// Create 创建作品。检查顺序：赛事、队伍、提交窗口、成员身份、唯一性，
// 全部通过后才上传附件，上传失败不写入任何记录
func (s *Service) Create(ctx context.Context, caller policy.Subject, req CreateReq, file *multipart.FileHeader) (*model.Submission, error) {
	e, err := s.store.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	team, err := s.store.GetTeam(ctx, req.TeamID)
	if err != nil {
		return nil, response.FromDB(err, "队伍不存在")
	}
	if team.EventID != e.ID {
		return nil, response.ErrNotFound.WithTips("队伍不属于该赛事")
	}
	now := s.now()
	if !e.IsSubmissionOpen(now) {
		return nil, response.ErrClosedWindow.WithTips("提交已截止")
	}
	caps, err := policy.Resolve(ctx, s.store, caller, e, team.ID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	if !caps.Has(policy.CanSubmit) {
		return nil, response.ErrForbidden.WithTips("只有队伍成员可以提交作品")
	}
	if team.Status != model.TeamActive {
		return nil, response.ErrForbidden.WithTips("队伍当前不可提交作品")
	}

	existing, err := s.store.ListTeamSubmissions(ctx, team.ID, e.ID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	var draft *model.Submission
	for i := range existing {
		if existing[i].Status != model.SubmissionDraft {
			return nil, response.ErrConflict.WithTips("该队伍已提交作品")
		}
		draft = &existing[i]
	}
	if req.Draft && draft != nil {
		return nil, response.ErrConflict.WithTips("该队伍已有草稿")
	}

	sub := &model.Submission{}
	if draft != nil {
		sub = draft
	}
	sub.EventID = e.ID
	sub.TeamID = team.ID
	sub.SubmittedByID = caller.UserID
	sub.Title = req.Title
	sub.Description = req.Description
	sub.GithubURL = req.GithubURL
	sub.VideoURL = req.VideoURL
	if req.FileURL != "" {
		sub.FileURL = req.FileURL
	}
	sub.Status = model.SubmissionSubmitted
	sub.SubmittedAt = &now
	if req.Draft {
		sub.Status = model.SubmissionDraft
		sub.SubmittedAt = nil
	}

	if err := s.upload(ctx, file, sub); err != nil {
		return nil, err
	}

	created := draft == nil
	if created {
		err = s.store.CreateSubmission(ctx, sub)
	} else {
		err = s.store.SaveSubmission(ctx, sub)
	}
	if err != nil {
		log.Error("保存作品失败", "team_id", team.ID, "event_id", e.ID, "error", err)
		return nil, response.FromDB(err, "")
	}

	log.Info("作品已保存", "submission_id", sub.ID, "team_id", team.ID, "status", sub.Status, "promoted", !created)
	metrics.SubmissionsCreated.WithLabelValues(string(sub.Status)).Inc()
	s.afterStatusChange(ctx, sub)
	return sub, nil
}

func (s *Service) Update(ctx context.Context, caller policy.Subject, id uint, req UpdateReq, file *multipart.FileHeader) (*model.Submission, error) {
	sc, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.memberWindow(sc); err != nil {
		return nil, err
	}
	sub := sc.sub
	if sub.Status != model.SubmissionDraft && sub.Status != model.SubmissionSubmitted {
		return nil, response.ErrConflict.WithTips("作品已进入评审，不能修改")
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, response.ErrValidation.Field("title", "不能为空")
		}
		sub.Title = *req.Title
	}
	if req.Description != nil {
		sub.Description = *req.Description
	}
	if req.GithubURL != nil {
		sub.GithubURL = *req.GithubURL
	}
	if req.VideoURL != nil {
		sub.VideoURL = *req.VideoURL
	}
	if err := s.upload(ctx, file, sub); err != nil {
		return nil, err
	}
	if err := s.store.SaveSubmission(ctx, sub); err != nil {
		return nil, response.FromDB(err, "")
	}
	s.leaderboard.Invalidate(ctx, sub.EventID)
	return sub, nil
}

// Submit 草稿转为正式提交，唯一性由存储层索引兜底
func (s *Service) Submit(ctx context.Context, caller policy.Subject, id uint) (*model.Submission, error) {
	sc, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.memberWindow(sc); err != nil {
		return nil, err
	}
	sub := sc.sub
	if sub.Status != model.SubmissionDraft {
		return nil, response.ErrConflict.WithTips("只有草稿可以提交")
	}
	now := s.now()
	sub.Status = model.SubmissionSubmitted
	sub.SubmittedAt = &now
	sub.SubmittedByID = caller.UserID
	if err := s.store.SaveSubmission(ctx, sub); err != nil {
		return nil, response.FromDB(err, "")
	}
	log.Info("草稿已提交", "submission_id", sub.ID, "team_id", sub.TeamID)
	metrics.SubmissionsCreated.WithLabelValues(string(sub.Status)).Inc()
	s.afterStatusChange(ctx, sub)
	return sub, nil
}

// SetStatus 组织者推进评审状态，不能退回草稿
func (s *Service) SetStatus(ctx context.Context, caller policy.Subject, id uint, status model.SubmissionStatus) (*model.Submission, error) {
	if !status.Valid() || status == model.SubmissionDraft {
		return nil, response.ErrValidation.Field("status", "取值无效")
	}
	sc, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !sc.caps.Has(policy.CanOrganize) {
		return nil, response.ErrForbidden.WithTips("只有赛事组织者或管理员可以修改作品状态")
	}
	sub := sc.sub
	if sub.Status == model.SubmissionDraft {
		return nil, response.ErrConflict.WithTips("草稿尚未提交")
	}
	sub.Status = status
	if err := s.store.SaveSubmission(ctx, sub); err != nil {
		return nil, response.FromDB(err, "")
	}
	log.Info("作品状态变更", "submission_id", id, "status", status, "user_id", caller.UserID)
	s.leaderboard.Invalidate(ctx, sub.EventID)
	return sub, nil
}

// Delete 软删除作品，评分与评论随之隐藏
func (s *Service) Delete(ctx context.Context, caller policy.Subject, id uint) error {
	sc, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}
	if !sc.caps.Has(policy.CanOrganize) {
		if err := s.memberWindow(sc); err != nil {
			return err
		}
	}
	if err := s.store.DeleteSubmission(ctx, id); err != nil {
		return response.FromDB(err, "作品不存在")
	}
	log.Info("作品已删除", "submission_id", id, "user_id", caller.UserID)
	s.leaderboard.Invalidate(ctx, sc.sub.EventID)
	return nil
}

// Get 草稿只对队员和组织者可见，已提交的作品对所有登录用户可见
func (s *Service) Get(ctx context.Context, caller policy.Subject, id uint) (*model.Submission, error) {
	sc, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if sc.caps.Any(policy.CanSubmit, policy.CanJudge, policy.CanOrganize) {
		return sc.sub, nil
	}
	if sc.sub.Status == model.SubmissionDraft || !sc.event.IsPublished {
		return nil, response.ErrNotFound.WithTips("作品不存在")
	}
	return sc.sub, nil
}

// ListByEvent 评委、组织者与管理员查看赛事的全部作品
func (s *Service) ListByEvent(ctx context.Context, caller policy.Subject, eventID uint, status model.SubmissionStatus, page store.Page) ([]model.Submission, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, response.ErrValidation.Field("status", "取值无效")
	}
	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, 0, response.FromDB(err, "赛事不存在")
	}
	caps, err := policy.Resolve(ctx, s.store, caller, e, 0)
	if err != nil {
		return nil, 0, response.FromDB(err, "")
	}
	if !caps.Any(policy.CanJudge, policy.CanOrganize) {
		return nil, 0, response.ErrForbidden.WithTips("只有评委或组织者可以查看")
	}
	subs, total, err := s.store.ListSubmissions(ctx, store.SubmissionFilter{Page: page, EventID: eventID, Status: status})
	if err != nil {
		return nil, 0, response.FromDB(err, "")
	}
	return subs, total, nil
}

// ListByTeam 队伍在其赛事下的作品（包括草稿）
func (s *Service) ListByTeam(ctx context.Context, caller policy.Subject, teamID uint) ([]model.Submission, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, response.FromDB(err, "队伍不存在")
	}
	e, err := s.store.GetEvent(ctx, team.EventID)
	if err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	caps, err := policy.Resolve(ctx, s.store, caller, e, team.ID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	if !caps.Any(policy.CanSubmit, policy.CanOrganize) {
		return nil, response.ErrForbidden.WithTips("只有队伍成员或组织者可以查看")
	}
	subs, err := s.store.ListTeamSubmissions(ctx, team.ID, e.ID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	return subs, nil
}

type PresignReq struct {
	EventID     uint   `json:"event_id" binding:"required"`
	TeamID      uint   `json:"team_id" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
}

// Presign 为队员生成直传对象存储的预签名地址，仅 s3 驱动支持
func (s *Service) Presign(ctx context.Context, caller policy.Subject, req PresignReq) (*storage.PresignedUploadResponse, error) {
	presigner, ok := s.storage.(storage.Presigner)
	if !ok {
		return nil, response.ErrInvalidRequest.WithTips("当前存储不支持直传")
	}
	e, err := s.store.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	if !e.IsSubmissionOpen(s.now()) {
		return nil, response.ErrClosedWindow.WithTips("提交已截止")
	}
	team, err := s.store.GetTeam(ctx, req.TeamID)
	if err != nil || team.EventID != e.ID {
		return nil, response.ErrNotFound.WithTips("队伍不存在")
	}
	caps, err := policy.Resolve(ctx, s.store, caller, e, team.ID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	if !caps.Has(policy.CanSubmit) {
		return nil, response.ErrForbidden.WithTips("只有队伍成员可以上传")
	}
	presigned, err := presigner.PresignUpload(ctx, storage.PresignedUploadRequest{
		Filename:    req.Filename,
		ContentType: req.ContentType,
	})
	if err != nil {
		return nil, response.ErrUpload.WithOrigin(err)
	}
	return presigned, nil
}

func (s *Service) AddComment(ctx context.Context, caller policy.Subject, id uint, content string) (*model.Comment, error) {
	sc, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !sc.caps.Any(policy.CanSubmit, policy.CanJudge, policy.CanOrganize) {
		return nil, response.ErrForbidden.WithTips("无权评论该作品")
	}
	comment := &model.Comment{SubmissionID: id, AuthorID: caller.UserID, Content: content}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, response.FromDB(err, "")
	}
	return comment, nil
}

func (s *Service) ListComments(ctx context.Context, caller policy.Subject, id uint) ([]model.Comment, error) {
	sc, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !sc.caps.Any(policy.CanSubmit, policy.CanJudge, policy.CanOrganize) {
		return nil, response.ErrForbidden.WithTips("无权查看评论")
	}
	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	return comments, nil
}

// afterStatusChange 正式提交后发布事件并刷新排行榜
func (s *Service) afterStatusChange(ctx context.Context, sub *model.Submission) {
	if sub.Status == model.SubmissionDraft {
		return
	}
	s.leaderboard.Invalidate(ctx, sub.EventID)
	err := s.bus.Publish(ctx, eventbus.TopicSubmissionCreated, eventbus.SubmissionCreated{
		SubmissionID: sub.ID,
		EventID:      sub.EventID,
		TeamID:       sub.TeamID,
		Status:       string(sub.Status),
		At:           s.now(),
	})
	if err != nil {
		log.Warn("发布作品事件失败", "submission_id", sub.ID, "error", err)
	}
}
