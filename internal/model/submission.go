package model

import (
	"time"

	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionDraft       SubmissionStatus = "draft"
	SubmissionSubmitted   SubmissionStatus = "submitted"
	SubmissionUnderReview SubmissionStatus = "under_review"
	SubmissionAccepted    SubmissionStatus = "accepted"
	SubmissionRejected    SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionDraft, SubmissionSubmitted, SubmissionUnderReview, SubmissionAccepted, SubmissionRejected:
		return true
	}
	return false
}

// Submission 队伍作品。AverageScore / TotalEvaluations 只由评分聚合写入。
// (team_id, event_id, active_slot) 唯一索引保证每队每赛事至多一条非草稿作品
type Submission struct {
	Model
	EventID          uint             `gorm:"not null;index;uniqueIndex:idx_team_event_active" json:"event_id"`
	TeamID           uint             `gorm:"not null;uniqueIndex:idx_team_event_active" json:"team_id"`
	SubmittedByID    uint             `gorm:"not null" json:"submitted_by_id"`
	Title            string           `gorm:"type:varchar(200);not null" json:"title"`
	Description      string           `gorm:"type:text" json:"description"`
	GithubURL        string           `gorm:"type:varchar(500)" json:"github_url,omitempty"`
	VideoURL         string           `gorm:"type:varchar(500)" json:"video_url,omitempty"`
	FileURL          string           `gorm:"type:varchar(500)" json:"file_url,omitempty"`
	FileType         string           `gorm:"type:varchar(100)" json:"file_type,omitempty"`
	FileSize         int64            `json:"file_size,omitempty"`
	Status           SubmissionStatus `gorm:"type:varchar(20);default:submitted;not null;index" json:"status"`
	SubmittedAt      *time.Time       `json:"submitted_at"`
	AverageScore     *float64         `json:"average_score"`
	TotalEvaluations int              `gorm:"default:0;not null" json:"total_evaluations"`
	ActiveSlot       *int8            `gorm:"uniqueIndex:idx_team_event_active" json:"-"`
}

// SyncSlot 非草稿且未删除的作品占用唯一槽位
func (s *Submission) SyncSlot() {
	s.ActiveSlot = slot(s.Status != SubmissionDraft && !s.DeletedAt.Valid)
}

func (s *Submission) BeforeSave(*gorm.DB) error {
	s.SyncSlot()
	return nil
}

// RankBefore 排行榜顺序：平均分降序且无分数者排最后，其次评审数降序，最后按 id 升序
func RankBefore(a, b *Submission) bool {
	switch {
	case a.AverageScore == nil && b.AverageScore == nil:
	case a.AverageScore == nil:
		return false
	case b.AverageScore == nil:
		return true
	case *a.AverageScore != *b.AverageScore:
		return *a.AverageScore > *b.AverageScore
	}
	if a.TotalEvaluations != b.TotalEvaluations {
		return a.TotalEvaluations > b.TotalEvaluations
	}
	return a.ID < b.ID
}

// Comment 作品评论，随作品一起软删除
type Comment struct {
	Model
	SubmissionID uint   `gorm:"not null;index" json:"submission_id"`
	AuthorID     uint   `gorm:"not null" json:"author_id"`
	Content      string `gorm:"type:text;not null" json:"content"`
}
