package model

import (
	"time"

	"gorm.io/gorm"
)

type TeamStatus string

const (
	TeamActive       TeamStatus = "active"
	TeamDisqualified TeamStatus = "disqualified"
	TeamWithdrawn    TeamStatus = "withdrawn"
)

type Team struct {
	Model
	EventID    uint         `gorm:"not null;uniqueIndex:idx_event_team_name" json:"event_id"`
	LeaderID   uint         `gorm:"not null" json:"leader_id"`
	Name       string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_event_team_name" json:"name"`
	InviteCode string       `gorm:"type:varchar(36);not null;uniqueIndex" json:"invite_code,omitempty"`
	Status     TeamStatus   `gorm:"type:varchar(20);default:active;not null" json:"status"`
	Members    []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
)

type MemberStatus string

const (
	MemberPending  MemberStatus = "pending"
	MemberAccepted MemberStatus = "accepted"
	MemberRejected MemberStatus = "rejected"
	MemberLeft     MemberStatus = "left"
)

// TeamMember 用户与队伍的关联。EventID 冗余存储，
// 用 (event_id, user_id, accepted_slot) 唯一索引保证同一赛事内至多一条 accepted 记录
type TeamMember struct {
	Model
	TeamID       uint         `gorm:"not null;uniqueIndex:idx_team_user" json:"team_id"`
	EventID      uint         `gorm:"not null;uniqueIndex:idx_event_user_accepted" json:"event_id"`
	UserID       uint         `gorm:"not null;uniqueIndex:idx_team_user;uniqueIndex:idx_event_user_accepted" json:"user_id"`
	Role         MemberRole   `gorm:"type:varchar(20);default:member;not null" json:"role"`
	Status       MemberStatus `gorm:"type:varchar(20);default:pending;not null" json:"status"`
	JoinedAt     *time.Time   `json:"joined_at"`
	LeftAt       *time.Time   `json:"left_at"`
	AcceptedSlot *int8        `gorm:"uniqueIndex:idx_event_user_accepted" json:"-"`
}

// SyncSlot 根据状态刷新 AcceptedSlot
func (m *TeamMember) SyncSlot() {
	m.AcceptedSlot = slot(m.Status == MemberAccepted && !m.DeletedAt.Valid)
}

func (m *TeamMember) BeforeSave(*gorm.DB) error {
	m.SyncSlot()
	return nil
}
