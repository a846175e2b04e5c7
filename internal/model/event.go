package model

import (
	"time"

	"gorm.io/datatypes"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventUpcoming, EventOngoing, EventCompleted, EventCancelled:
		return true
	}
	return false
}

// Criterion 评分维度，按列表顺序展示
type Criterion struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	MaxScore float64 `json:"max_score"`
}

type Event struct {
	Model
	Title               string                         `gorm:"type:varchar(200);not null" json:"title"`
	Description         string                         `gorm:"type:text" json:"description"`
	OrganizerID         uint                           `gorm:"not null;index" json:"organizer_id"`
	StartDate           time.Time                      `gorm:"not null" json:"start_date"`
	EndDate             time.Time                      `gorm:"not null" json:"end_date"`
	RegistrationStart   time.Time                      `json:"registration_start"`
	RegistrationEnd     time.Time                      `gorm:"not null" json:"registration_end"`
	SubmissionDeadline  time.Time                      `gorm:"not null" json:"submission_deadline"`
	JudgingEnd          *time.Time                     `json:"judging_end"` // 为空表示评审不设截止
	MinTeamSize         int                            `gorm:"default:1;not null" json:"min_team_size"`
	MaxTeamSize         int                            `gorm:"default:5;not null" json:"max_team_size"`
	JudgingCriteria     datatypes.JSONSlice[Criterion] `json:"judging_criteria"`
	Status              EventStatus                    `gorm:"type:varchar(20);default:draft;not null" json:"status"`
	IsPublished         bool                           `gorm:"default:false;not null" json:"is_published"`
	IsLeaderboardPublic bool                           `gorm:"default:false;not null" json:"is_leaderboard_public"`
}

// Validate 检查时间窗口与队伍人数约束
func (e *Event) Validate() error {
	switch {
	case e.Title == "":
		return &FieldError{"title", "不能为空"}
	case !e.EndDate.After(e.StartDate):
		return &FieldError{"end_date", "必须晚于 start_date"}
	case !e.RegistrationEnd.Before(e.StartDate):
		return &FieldError{"registration_end", "必须早于 start_date"}
	case !e.RegistrationStart.IsZero() && e.RegistrationStart.After(e.RegistrationEnd):
		return &FieldError{"registration_start", "不能晚于 registration_end"}
	case e.SubmissionDeadline.After(e.EndDate):
		return &FieldError{"submission_deadline", "不能晚于 end_date"}
	case e.JudgingEnd != nil && e.JudgingEnd.Before(e.SubmissionDeadline):
		return &FieldError{"judging_end", "不能早于 submission_deadline"}
	case e.MinTeamSize < 1:
		return &FieldError{"min_team_size", "至少为 1"}
	case e.MaxTeamSize < e.MinTeamSize:
		return &FieldError{"max_team_size", "不能小于 min_team_size"}
	}

	seen := make(map[string]bool, len(e.JudgingCriteria))
	for _, c := range e.JudgingCriteria {
		if c.ID == "" {
			return &FieldError{"judging_criteria", "评分维度 id 不能为空"}
		}
		if seen[c.ID] {
			return &FieldError{c.ID, "评分维度 id 重复"}
		}
		seen[c.ID] = true
		if c.MaxScore <= 0 {
			return &FieldError{c.ID, "max_score 必须大于 0"}
		}
	}
	return nil
}

// IsRegistrationOpen 报名窗口：[registration_start, registration_end]
func (e *Event) IsRegistrationOpen(now time.Time) bool {
	if !e.RegistrationStart.IsZero() && now.Before(e.RegistrationStart) {
		return false
	}
	return !now.After(e.RegistrationEnd)
}

// IsSubmissionOpen 当前时间不晚于提交截止且不晚于赛事结束
func (e *Event) IsSubmissionOpen(now time.Time) bool {
	return !now.After(e.SubmissionDeadline) && !now.After(e.EndDate)
}

// IsJudgingOpen 当前时间不晚于评审截止
func (e *Event) IsJudgingOpen(now time.Time) bool {
	return e.JudgingEnd == nil || !now.After(*e.JudgingEnd)
}

// Criterion 按 id 查找评分维度
func (e *Event) Criterion(id string) (Criterion, bool) {
	for _, c := range e.JudgingCriteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

type JudgeStatus string

const (
	JudgePending  JudgeStatus = "pending"
	JudgeAccepted JudgeStatus = "accepted"
	JudgeDeclined JudgeStatus = "declined"
)

// EventJudge 赛事评委邀请，accepted 才具备评审资格
type EventJudge struct {
	Model
	EventID   uint        `gorm:"not null;uniqueIndex:idx_event_judge" json:"event_id"`
	UserID    uint        `gorm:"not null;uniqueIndex:idx_event_judge" json:"user_id"`
	InvitedBy uint        `gorm:"not null" json:"invited_by"`
	Status    JudgeStatus `gorm:"type:varchar(20);default:pending;not null" json:"status"`
}
