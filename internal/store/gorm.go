package store

import (
	"context"
	"time"

	"hackathon-platform/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db *gorm.DB
}

// NewGorm 基于 gorm 的实现，db 需以 TranslateError 打开，冲突才能映射为 ErrDuplicate
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) q(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.q(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func first[T any](db *gorm.DB, conds ...any) (*T, error) {
	var v T
	if err := db.First(&v, conds...).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func paged(db *gorm.DB, p Page) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

func (s *gormStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	return first[model.User](s.q(ctx), id)
}

func (s *gormStore) FirstOrCreateUser(ctx context.Context, u *model.User) error {
	return s.q(ctx).Where(model.User{Model: model.Model{ID: u.ID}}).Attrs(*u).FirstOrCreate(u).Error
}

func (s *gormStore) CreateEvent(ctx context.Context, e *model.Event) error {
	return s.q(ctx).Create(e).Error
}

func (s *gormStore) GetEvent(ctx context.Context, id uint) (*model.Event, error) {
	return first[model.Event](s.q(ctx), id)
}

func (s *gormStore) SaveEvent(ctx context.Context, e *model.Event) error {
	return s.q(ctx).Save(e).Error
}

func (s *gormStore) DeleteEvent(ctx context.Context, id uint) error {
	res := s.q(ctx).Delete(&model.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) ListEvents(ctx context.Context, f EventFilter) ([]model.Event, int64, error) {
	query := s.q(ctx).Model(&model.Event{})
	switch {
	case f.PublishedOnly && f.OrganizerID != 0:
		query = query.Where("is_published = ? OR organizer_id = ?", true, f.OrganizerID)
	case f.PublishedOnly:
		query = query.Where("is_published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []model.Event
	if err := paged(query, f.Page).Order("start_date DESC, id DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *gormStore) GetEventJudge(ctx context.Context, eventID, userID uint) (*model.EventJudge, error) {
	return first[model.EventJudge](s.q(ctx), "event_id = ? AND user_id = ?", eventID, userID)
}

func (s *gormStore) SaveEventJudge(ctx context.Context, j *model.EventJudge) error {
	return s.q(ctx).Save(j).Error
}

func (s *gormStore) ListEventJudges(ctx context.Context, eventID uint) ([]model.EventJudge, error) {
	var judges []model.EventJudge
	err := s.q(ctx).Where("event_id = ?", eventID).Order("id").Find(&judges).Error
	return judges, err
}

func (s *gormStore) CreateTeam(ctx context.Context, t *model.Team) error {
	return s.q(ctx).Omit("Members").Create(t).Error
}

func (s *gormStore) GetTeam(ctx context.Context, id uint) (*model.Team, error) {
	return first[model.Team](s.q(ctx), id)
}

func (s *gormStore) LockTeam(ctx context.Context, id uint) (*model.Team, error) {
	return first[model.Team](s.q(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (s *gormStore) GetTeamByInviteCode(ctx context.Context, code string) (*model.Team, error) {
	return first[model.Team](s.q(ctx), "invite_code = ?", code)
}

func (s *gormStore) SaveTeam(ctx context.Context, t *model.Team) error {
	return s.q(ctx).Omit("Members").Save(t).Error
}

func (s *gormStore) ListTeams(ctx context.Context, eventID uint) ([]model.Team, error) {
	var teams []model.Team
	err := s.q(ctx).Where("event_id = ?", eventID).Order("id").Find(&teams).Error
	return teams, err
}

func (s *gormStore) GetTeamMember(ctx context.Context, teamID, userID uint) (*model.TeamMember, error) {
	return first[model.TeamMember](s.q(ctx), "team_id = ? AND user_id = ?", teamID, userID)
}

func (s *gormStore) FindAcceptedMembership(ctx context.Context, eventID, userID uint) (*model.TeamMember, error) {
	return first[model.TeamMember](s.q(ctx), "event_id = ? AND user_id = ? AND status = ?",
		eventID, userID, model.MemberAccepted)
}

func (s *gormStore) ListTeamMembers(ctx context.Context, teamID uint, statuses ...model.MemberStatus) ([]model.TeamMember, error) {
	query := s.q(ctx).Where("team_id = ?", teamID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var members []model.TeamMember
	err := query.Order("joined_at, id").Find(&members).Error
	return members, err
}

func (s *gormStore) SaveTeamMember(ctx context.Context, m *model.TeamMember) error {
	return s.q(ctx).Save(m).Error
}

func (s *gormStore) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	return s.q(ctx).Create(sub).Error
}

func (s *gormStore) GetSubmission(ctx context.Context, id uint) (*model.Submission, error) {
	return first[model.Submission](s.q(ctx), id)
}

func (s *gormStore) LockSubmission(ctx context.Context, id uint) (*model.Submission, error) {
	return first[model.Submission](s.q(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (s *gormStore) ListTeamSubmissions(ctx context.Context, teamID, eventID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := s.q(ctx).Where("team_id = ? AND event_id = ?", teamID, eventID).Order("id").Find(&subs).Error
	return subs, err
}

func (s *gormStore) ListSubmissions(ctx context.Context, f SubmissionFilter) ([]model.Submission, int64, error) {
	query := s.q(ctx).Model(&model.Submission{}).Where("event_id = ?", f.EventID)
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var subs []model.Submission
	if err := paged(query, f.Page).Order("id").Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// SaveSubmission 整行保存作品，但不写分数列；分数列只由 UpdateSubmissionScores 维护，
// 保存后回填数据库中的当前分数
func (s *gormStore) SaveSubmission(ctx context.Context, sub *model.Submission) error {
	db := s.q(ctx)
	if err := db.Omit("AverageScore", "TotalEvaluations").Save(sub).Error; err != nil {
		return err
	}
	return db.Model(&model.Submission{}).
		Select("average_score", "total_evaluations").
		Where("id = ?", sub.ID).
		Take(sub).Error
}

func (s *gormStore) DeleteSubmission(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx Store) error {
		db := tx.(*gormStore).q(ctx)
		sub, err := first[model.Submission](db, id)
		if err != nil {
			return err
		}
		// 先释放唯一槽位，否则软删除的行仍会占用 (team, event) 的非草稿名额
		if err := db.Model(sub).UpdateColumn("active_slot", nil).Error; err != nil {
			return errors.Wrap(err, "release active slot")
		}
		if err := db.Delete(sub).Error; err != nil {
			return err
		}
		if err := db.Where("submission_id = ?", id).Delete(&model.Evaluation{}).Error; err != nil {
			return errors.Wrap(err, "cascade evaluations")
		}
		if err := db.Where("submission_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return errors.Wrap(err, "cascade comments")
		}
		return nil
	})
}

func (s *gormStore) UpdateSubmissionScores(ctx context.Context, id uint, average *float64, total int) error {
	return s.q(ctx).Model(&model.Submission{}).Where("id = ?", id).UpdateColumns(map[string]any{
		"average_score":     average,
		"total_evaluations": total,
		"updated_at":        time.Now(),
	}).Error
}

func (s *gormStore) ListRankedSubmissions(ctx context.Context, eventID uint, p Page) ([]model.Submission, int64, error) {
	query := s.q(ctx).Model(&model.Submission{}).
		Where("event_id = ? AND status = ?", eventID, model.SubmissionSubmitted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var subs []model.Submission
	err := paged(query, p).
		Order("average_score IS NULL, average_score DESC, total_evaluations DESC, id ASC").
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (s *gormStore) FindEvaluation(ctx context.Context, submissionID, judgeID uint, round int) (*model.Evaluation, error) {
	return first[model.Evaluation](s.q(ctx).Unscoped(),
		"submission_id = ? AND judge_id = ? AND round = ?", submissionID, judgeID, round)
}

func (s *gormStore) GetEvaluation(ctx context.Context, id uint) (*model.Evaluation, error) {
	return first[model.Evaluation](s.q(ctx), id)
}

func (s *gormStore) CreateEvaluation(ctx context.Context, e *model.Evaluation) error {
	return s.q(ctx).Create(e).Error
}

func (s *gormStore) SaveEvaluation(ctx context.Context, e *model.Evaluation) error {
	e.DeletedAt = gorm.DeletedAt{}
	return s.q(ctx).Unscoped().Save(e).Error
}

func (s *gormStore) DeleteEvaluation(ctx context.Context, id uint) error {
	res := s.q(ctx).Delete(&model.Evaluation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) ListEvaluations(ctx context.Context, submissionID uint) ([]model.Evaluation, error) {
	var evals []model.Evaluation
	err := s.q(ctx).Where("submission_id = ?", submissionID).Order("round, id").Find(&evals).Error
	return evals, err
}

func (s *gormStore) ListEvaluationScores(ctx context.Context, submissionID uint) ([]float64, error) {
	var scores []float64
	err := s.q(ctx).Model(&model.Evaluation{}).Where("submission_id = ?", submissionID).Pluck("score", &scores).Error
	return scores, err
}

func (s *gormStore) CreateComment(ctx context.Context, c *model.Comment) error {
	return s.q(ctx).Create(c).Error
}

func (s *gormStore) ListComments(ctx context.Context, submissionID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.q(ctx).Where("submission_id = ?", submissionID).Order("id").Find(&comments).Error
	return comments, err
}
