package user

import (
	"context"
	"fmt"

	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Me 返回令牌对应的用户，首次访问时按令牌中的信息建档
func (s *Service) Me(ctx context.Context, id uint, name string, role model.Role) (*model.User, error) {
	if name == "" {
		name = fmt.Sprintf("user-%d", id)
	}
	if !role.Valid() {
		role = model.RoleParticipant
	}
	u := &model.User{Model: model.Model{ID: id}, Name: name, Role: role}
	if err := s.store.FirstOrCreateUser(ctx, u); err != nil {
		return nil, response.FromDB(err, "")
	}
	return u, nil
}

// Profile 公开资料，不含邮箱
func (s *Service) Profile(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, response.FromDB(err, "用户不存在")
	}
	u.Email = ""
	return u, nil
}
