package model

import (
	"gorm.io/datatypes"
)

type EvaluationStatus string

const (
	EvaluationDraft     EvaluationStatus = "draft"
	EvaluationSubmitted EvaluationStatus = "submitted"
)

// Evaluation 一位评委在某一轮对某作品的评分，(submission_id, judge_id, round) 唯一。
// 唯一索引包含软删除的行，重新评分时复用该行
type Evaluation struct {
	Model
	SubmissionID   uint                                   `gorm:"not null;uniqueIndex:idx_evaluation_identity" json:"submission_id"`
	JudgeID        uint                                   `gorm:"not null;uniqueIndex:idx_evaluation_identity" json:"judge_id"`
	Round          int                                    `gorm:"not null;default:1;uniqueIndex:idx_evaluation_identity" json:"round"`
	EventID        uint                                   `gorm:"not null;index" json:"event_id"`
	Score          float64                                `gorm:"not null" json:"score"`
	CriteriaScores datatypes.JSONType[map[string]float64] `json:"criteria_scores"`
	Feedback       string                                 `gorm:"type:text" json:"feedback"`
	Status         EvaluationStatus                       `gorm:"type:varchar(20);default:submitted;not null" json:"status"`
}
