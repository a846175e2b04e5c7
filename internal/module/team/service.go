package team

import (
	"context"
	"errors"
	"time"

	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/policy"
	"hackathon-platform/internal/store"

	"github.com/google/uuid"
)

type Service struct {
	store store.Store
	bus   eventbus.Publisher
	now   func() time.Time
}

func NewService(s store.Store, bus eventbus.Publisher) *Service {
	return &Service{store: s, bus: bus, now: time.Now}
}

type CreateReq struct {
	EventID uint   `json:"event_id" binding:"required"`
	Name    string `json:"name" binding:"required,max=100"`
}

// Detail 队伍及其 accepted 成员
type Detail struct {
	model.Team
	Members []model.TeamMember `json:"members"`
}

// registrationEvent 读取赛事并要求其已发布且处于报名窗口内
func (s *Service) registrationEvent(ctx context.Context, eventID uint) (*model.Event, error) {
	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	if !e.IsPublished {
		return nil, response.ErrNotFound.WithTips("赛事不存在")
	}
	if !e.IsRegistrationOpen(s.now()) {
		return nil, response.ErrClosedWindow.WithTips("报名已截止")
	}
	return e, nil
}

// ensureNoMembership 同一赛事内用户只能属于一支队伍
func ensureNoMembership(ctx context.Context, tx store.Store, eventID, userID uint) error {
	_, err := tx.FindAcceptedMembership(ctx, eventID, userID)
	switch {
	case err == nil:
		return response.ErrConflict.WithTips("已加入该赛事的其他队伍")
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return err
	}
}

// Create 创建队伍，创建者成为队长及 admin 成员
func (s *Service) Create(ctx context.Context, sub policy.Subject, req CreateReq) (*Detail, error) {
	e, err := s.registrationEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	team := &model.Team{
		EventID:    e.ID,
		LeaderID:   sub.UserID,
		Name:       req.Name,
		InviteCode: uuid.NewString(),
		Status:     model.TeamActive,
	}
	leader := &model.TeamMember{
		EventID:  e.ID,
		UserID:   sub.UserID,
		Role:     model.MemberRoleAdmin,
		Status:   model.MemberAccepted,
		JoinedAt: &now,
	}
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if err := ensureNoMembership(ctx, tx, e.ID, sub.UserID); err != nil {
			return err
		}
		if err := tx.CreateTeam(ctx, team); err != nil {
			return err
		}
		leader.TeamID = team.ID
		return tx.SaveTeamMember(ctx, leader)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, response.ErrConflict.WithTips("队伍名称已被使用")
		}
		return nil, response.FromDB(err, "")
	}

	log.Info("队伍创建成功", "team_id", team.ID, "event_id", e.ID, "leader_id", sub.UserID)
	s.publishJoined(ctx, leader)
	return &Detail{Team: *team, Members: []model.TeamMember{*leader}}, nil
}

// Join 通过邀请码加入队伍；曾经离开或被拒绝的记录会被复用
func (s *Service) Join(ctx context.Context, sub policy.Subject, code string) (*model.TeamMember, error) {
	team, err := s.store.GetTeamByInviteCode(ctx, code)
	if err != nil {
		return nil, response.FromDB(err, "邀请码无效")
	}
	if team.Status != model.TeamActive {
		return nil, response.ErrConflict.WithTips("队伍当前不可加入")
	}
	e, err := s.registrationEvent(ctx, team.EventID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var member *model.TeamMember
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.LockTeam(ctx, team.ID); err != nil {
			return err
		}
		if err := ensureNoMembership(ctx, tx, e.ID, sub.UserID); err != nil {
			return err
		}
		accepted, err := tx.ListTeamMembers(ctx, team.ID, model.MemberAccepted)
		if err != nil {
			return err
		}
		if len(accepted) >= e.MaxTeamSize {
			return response.ErrConflict.WithTips("队伍人数已满")
		}

		member, err = tx.GetTeamMember(ctx, team.ID, sub.UserID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			member = &model.TeamMember{TeamID: team.ID, EventID: e.ID, UserID: sub.UserID}
		case err != nil:
			return err
		}
		member.Role = model.MemberRoleMember
		member.Status = model.MemberAccepted
		member.JoinedAt = &now
		member.LeftAt = nil
		return tx.SaveTeamMember(ctx, member)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, response.ErrConflict.WithTips("已加入该赛事的其他队伍")
		}
		return nil, response.FromDB(err, "队伍不存在")
	}

	log.Info("成员加入队伍", "team_id", team.ID, "user_id", sub.UserID)
	s.publishJoined(ctx, member)
	return member, nil
}

// Leave 退出队伍。admin 全部离开时由最早加入的成员接任队长，
// 没有剩余成员的队伍变为 withdrawn
func (s *Service) Leave(ctx context.Context, sub policy.Subject, teamID uint) error {
	now := s.now()
	return s.store.Transaction(ctx, func(tx store.Store) error {
		team, err := tx.LockTeam(ctx, teamID)
		if err != nil {
			return response.FromDB(err, "队伍不存在")
		}
		member, err := tx.GetTeamMember(ctx, teamID, sub.UserID)
		if err != nil || member.Status != model.MemberAccepted {
			return response.ErrNotFound.WithTips("不是该队伍成员")
		}
		member.Status = model.MemberLeft
		member.Role = model.MemberRoleMember
		member.LeftAt = &now
		if err := tx.SaveTeamMember(ctx, member); err != nil {
			return response.FromDB(err, "")
		}

		remaining, err := tx.ListTeamMembers(ctx, teamID, model.MemberAccepted)
		if err != nil {
			return response.FromDB(err, "")
		}
		if len(remaining) == 0 {
			team.Status = model.TeamWithdrawn
			log.Info("队伍已无成员，标记为退出", "team_id", teamID)
			return response.FromDB(tx.SaveTeam(ctx, team), "")
		}

		successor := succeed(remaining)
		if successor.Role != model.MemberRoleAdmin {
			successor.Role = model.MemberRoleAdmin
			if err := tx.SaveTeamMember(ctx, successor); err != nil {
				return response.FromDB(err, "")
			}
		}
		if team.LeaderID == sub.UserID {
			team.LeaderID = successor.UserID
			log.Info("队长变更", "team_id", teamID, "leader_id", successor.UserID)
			return response.FromDB(tx.SaveTeam(ctx, team), "")
		}
		return nil
	})
}

// succeed 优先返回已有的 admin，否则返回最早加入的成员；members 按加入时间升序
func succeed(members []model.TeamMember) *model.TeamMember {
	for i := range members {
		if members[i].Role == model.MemberRoleAdmin {
			return &members[i]
		}
	}
	return &members[0]
}

// Get 邀请码只对队伍成员和赛事组织者可见
func (s *Service) Get(ctx context.Context, sub policy.Subject, id uint) (*Detail, error) {
	team, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return nil, response.FromDB(err, "队伍不存在")
	}
	e, err := s.store.GetEvent(ctx, team.EventID)
	if err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	caps, err := policy.Resolve(ctx, s.store, sub, e, team.ID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	if !caps.Any(policy.CanSubmit, policy.CanOrganize) {
		team.InviteCode = ""
	}
	members, err := s.store.ListTeamMembers(ctx, id, model.MemberAccepted)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	return &Detail{Team: *team, Members: members}, nil
}

func (s *Service) List(ctx context.Context, eventID uint) ([]model.Team, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, response.FromDB(err, "赛事不存在")
	}
	teams, err := s.store.ListTeams(ctx, eventID)
	if err != nil {
		return nil, response.FromDB(err, "")
	}
	for i := range teams {
		teams[i].InviteCode = ""
	}
	return teams, nil
}

// SetStatus 组织者取消队伍资格或恢复
func (s *Service) SetStatus(ctx context.Context, sub policy.Subject, id uint, status model.TeamStatus) (*model.Team, error) {
	switch status {
	case model.TeamActive, model.TeamDisqualified, model.TeamWithdrawn:
	default:
		return nil, response.ErrValidation.Field("status", "取值无效")
	}
	team, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return nil, response.FromDB(err, "队伍不存在")
	}
	e, err := s.store.GetEvent(ctx, team.EventID)
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
	team.Status = status
	if err := s.store.SaveTeam(ctx, team); err != nil {
		return nil, response.FromDB(err, "")
	}
	log.Info("队伍状态变更", "team_id", id, "status", status, "user_id", sub.UserID)
	return team, nil
}

func (s *Service) publishJoined(ctx context.Context, m *model.TeamMember) {
	err := s.bus.Publish(ctx, eventbus.TopicMemberJoined, eventbus.MemberJoined{
		TeamID:  m.TeamID,
		EventID: m.EventID,
		UserID:  m.UserID,
		Role:    string(m.Role),
		At:      s.now(),
	})
	if err != nil {
		log.Warn("发布成员加入事件失败", "team_id", m.TeamID, "error", err)
	}
}
