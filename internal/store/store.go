// Package store 实体存储：对 Event/Team/Submission/Evaluation 等记录的持久化访问。
// 唯一性约束由存储层的唯一索引保证，冲突统一返回 ErrDuplicate
package store

import (
	"context"

	"hackathon-platform/internal/model"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = gorm.ErrRecordNotFound
	ErrDuplicate = gorm.ErrDuplicatedKey
)

// Page 分页参数
type Page struct {
	Limit  int
	Offset int
}

type EventFilter struct {
	Page
	PublishedOnly bool
	OrganizerID   uint // 非 0 时额外包含该组织者的未发布赛事
}

type SubmissionFilter struct {
	Page
	EventID uint
	Status  model.SubmissionStatus // 为空不过滤
}

type Store interface {
	// Transaction 在同一事务中执行 fn，fn 返回错误时回滚
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetUser(ctx context.Context, id uint) (*model.User, error)
	FirstOrCreateUser(ctx context.Context, u *model.User) error

	CreateEvent(ctx context.Context, e *model.Event) error
	GetEvent(ctx context.Context, id uint) (*model.Event, error)
	SaveEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id uint) error
	ListEvents(ctx context.Context, f EventFilter) ([]model.Event, int64, error)

	GetEventJudge(ctx context.Context, eventID, userID uint) (*model.EventJudge, error)
	SaveEventJudge(ctx context.Context, j *model.EventJudge) error
	ListEventJudges(ctx context.Context, eventID uint) ([]model.EventJudge, error)

	CreateTeam(ctx context.Context, t *model.Team) error
	GetTeam(ctx context.Context, id uint) (*model.Team, error)
	// LockTeam 读取并对队伍行加写锁，直到事务结束
	LockTeam(ctx context.Context, id uint) (*model.Team, error)
	GetTeamByInviteCode(ctx context.Context, code string) (*model.Team, error)
	SaveTeam(ctx context.Context, t *model.Team) error
	ListTeams(ctx context.Context, eventID uint) ([]model.Team, error)

	GetTeamMember(ctx context.Context, teamID, userID uint) (*model.TeamMember, error)
	// FindAcceptedMembership 用户在赛事内的 accepted 成员记录
	FindAcceptedMembership(ctx context.Context, eventID, userID uint) (*model.TeamMember, error)
	// ListTeamMembers 按加入时间升序；statuses 为空时返回全部
	ListTeamMembers(ctx context.Context, teamID uint, statuses ...model.MemberStatus) ([]model.TeamMember, error)
	SaveTeamMember(ctx context.Context, m *model.TeamMember) error

	CreateSubmission(ctx context.Context, s *model.Submission) error
	GetSubmission(ctx context.Context, id uint) (*model.Submission, error)
	// LockSubmission 读取并对作品行加写锁，直到事务结束
	LockSubmission(ctx context.Context, id uint) (*model.Submission, error)
	ListTeamSubmissions(ctx context.Context, teamID, eventID uint) ([]model.Submission, error)
	ListSubmissions(ctx context.Context, f SubmissionFilter) ([]model.Submission, int64, error)
	SaveSubmission(ctx context.Context, s *model.Submission) error
	// DeleteSubmission 软删除作品及其评分、评论
	DeleteSubmission(ctx context.Context, id uint) error
	UpdateSubmissionScores(ctx context.Context, id uint, average *float64, total int) error
	// ListRankedSubmissions 赛事内 submitted 状态作品按排行榜顺序分页，同时返回总数
	ListRankedSubmissions(ctx context.Context, eventID uint, p Page) ([]model.Submission, int64, error)

	// FindEvaluation 按 (submission, judge, round) 查找，包括已软删除的行
	FindEvaluation(ctx context.Context, submissionID, judgeID uint, round int) (*model.Evaluation, error)
	GetEvaluation(ctx context.Context, id uint) (*model.Evaluation, error)
	CreateEvaluation(ctx context.Context, e *model.Evaluation) error
	// SaveEvaluation 保存并清除软删除标记
	SaveEvaluation(ctx context.Context, e *model.Evaluation) error
	DeleteEvaluation(ctx context.Context, id uint) error
	ListEvaluations(ctx context.Context, submissionID uint) ([]model.Evaluation, error)
	// ListEvaluationScores 作品所有未删除评分的 score，不区分轮次
	ListEvaluationScores(ctx context.Context, submissionID uint) ([]float64, error)

	CreateComment(ctx context.Context, c *model.Comment) error
	ListComments(ctx context.Context, submissionID uint) ([]model.Comment, error)
}
