package team

import (
	"context"
	"sync"
	"testing"
	"time"

	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/policy"
	"hackathon-platform/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	topics []string
}

func (r *recorder) Publish(_ context.Context, topic string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return nil
}

func participant(id uint) policy.Subject {
	return policy.Subject{UserID: id, Role: model.RoleParticipant}
}

func TestCreateAndJoin(t *testing.T) {
	mem := storetest.New()
	bus := &recorder{}
	s := NewService(mem, bus)
	ctx := context.Background()
	e := storetest.OpenEvent(t, mem, 1)
	e.MaxTeamSize = 2
	require.NoError(t, mem.SaveEvent(ctx, e))

	team, err := s.Create(ctx, participant(10), CreateReq{EventID: e.ID, Name: "Gophers"})
	require.NoError(t, err)
	assert.Equal(t, uint(10), team.LeaderID)
	assert.NotEmpty(t, team.InviteCode)
	require.Len(t, team.Members, 1)
	assert.Equal(t, model.MemberRoleAdmin, team.Members[0].Role)

	_, err = s.Create(ctx, participant(11), CreateReq{EventID: e.ID, Name: "Gophers"})
	assert.ErrorIs(t, err, response.ErrConflict, "同一赛事内队名唯一")

	_, err = s.Create(ctx, participant(10), CreateReq{EventID: e.ID, Name: "Another"})
	assert.ErrorIs(t, err, response.ErrConflict, "已有队伍的用户不能再建队")

	member, err := s.Join(ctx, participant(11), team.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, model.MemberAccepted, member.Status)
	assert.Equal(t, model.MemberRoleMember, member.Role)

	_, err = s.Join(ctx, participant(12), team.InviteCode)
	assert.ErrorIs(t, err, response.ErrConflict, "队伍人数已满")

	_, err = s.Join(ctx, participant(12), "no-such-code")
	assert.ErrorIs(t, err, response.ErrNotFound)

	assert.Equal(t, []string{eventbus.TopicMemberJoined, eventbus.TopicMemberJoined}, bus.topics)
}

func TestOneAcceptedMembershipPerEvent(t *testing.T) {
	mem := storetest.New()
	s := NewService(mem, eventbus.Discard)
	ctx := context.Background()
	e := storetest.OpenEvent(t, mem, 1)
	a := storetest.Team(t, mem, e.ID, 20)
	storetest.Team(t, mem, e.ID, 21, 22)

	_, err := s.Join(ctx, participant(22), a.InviteCode)
	assert.ErrorIs(t, err, response.ErrConflict)

	other := storetest.OpenEvent(t, mem, 1)
	b := storetest.Team(t, mem, other.ID, 30)
	_, err = s.Join(ctx, participant(22), b.InviteCode)
	assert.NoError(t, err, "不同赛事互不影响")
}

func TestRegistrationWindow(t *testing.T) {
	mem := storetest.New()
	s := NewService(mem, eventbus.Discard)
	ctx := context.Background()
	e := storetest.OpenEvent(t, mem, 1)
	team := storetest.Team(t, mem, e.ID, 40)

	s.now = func() time.Time { return e.RegistrationEnd.Add(time.Minute) }
	_, err := s.Create(ctx, participant(41), CreateReq{EventID: e.ID, Name: "Late"})
	assert.ErrorIs(t, err, response.ErrClosedWindow)
	_, err = s.Join(ctx, participant(41), team.InviteCode)
	assert.ErrorIs(t, err, response.ErrClosedWindow)

	draft := storetest.OpenEvent(t, mem, 1)
	draft.IsPublished = false
	require.NoError(t, mem.SaveEvent(ctx, draft))
	s.now = time.Now
	_, err = s.Create(ctx, participant(41), CreateReq{EventID: draft.ID, Name: "Early"})
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestLeaveSuccession(t *testing.T) {
	mem := storetest.New()
	s := NewService(mem, eventbus.Discard)
	ctx := context.Background()
	e := storetest.OpenEvent(t, mem, 1)
	team := storetest.Team(t, mem, e.ID, 50, 51, 52)

	require.NoError(t, s.Leave(ctx, participant(50), team.ID))

	got, err := mem.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(51), got.LeaderID, "最早加入的成员接任队长")
	successor, err := mem.GetTeamMember(ctx, team.ID, 51)
	require.NoError(t, err)
	assert.Equal(t, model.MemberRoleAdmin, successor.Role)
	left, err := mem.GetTeamMember(ctx, team.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, model.MemberLeft, left.Status)
	assert.NotNil(t, left.LeftAt)

	err = s.Leave(ctx, participant(50), team.ID)
	assert.ErrorIs(t, err, response.ErrNotFound, "已离开的成员")

	require.NoError(t, s.Leave(ctx, participant(52), team.ID))
	got, _ = mem.GetTeam(ctx, team.ID)
	assert.Equal(t, uint(51), got.LeaderID)
	assert.Equal(t, model.TeamActive, got.Status)

	require.NoError(t, s.Leave(ctx, participant(51), team.ID))
	got, _ = mem.GetTeam(ctx, team.ID)
	assert.Equal(t, model.TeamWithdrawn, got.Status)
}

func TestRejoinReusesMemberRow(t *testing.T) {
	mem := storetest.New()
	s := NewService(mem, eventbus.Discard)
	ctx := context.Background()
	e := storetest.OpenEvent(t, mem, 1)
	team := storetest.Team(t, mem, e.ID, 60, 61)

	require.NoError(t, s.Leave(ctx, participant(61), team.ID))
	before, err := mem.GetTeamMember(ctx, team.ID, 61)
	require.NoError(t, err)

	member, err := s.Join(ctx, participant(61), team.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, before.ID, member.ID)
	assert.Nil(t, member.LeftAt)
}

func TestInviteCodeVisibility(t *testing.T) {
	mem := storetest.New()
	s := NewService(mem, eventbus.Discard)
	ctx := context.Background()
	e := storetest.OpenEvent(t, mem, 1)
	team := storetest.Team(t, mem, e.ID, 70, 71)

	got, err := s.Get(ctx, participant(71), team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.InviteCode, got.InviteCode)
	assert.Len(t, got.Members, 2)

	got, err = s.Get(ctx, participant(99), team.ID)
	require.NoError(t, err)
	assert.Empty(t, got.InviteCode)

	got, err = s.Get(ctx, policy.Subject{UserID: 1, Role: model.RoleOrganizer}, team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.InviteCode, got.InviteCode)

	teams, err := s.List(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Empty(t, teams[0].InviteCode)
}

func TestSetStatus(t *testing.T) {
	mem := storetest.New()
	s := NewService(mem, eventbus.Discard)
	ctx := context.Background()
	e := storetest.OpenEvent(t, mem, 1)
	team := storetest.Team(t, mem, e.ID, 80)

	_, err := s.SetStatus(ctx, participant(80), team.ID, model.TeamDisqualified)
	assert.ErrorIs(t, err, response.ErrForbidden)

	got, err := s.SetStatus(ctx, policy.Subject{UserID: 1, Role: model.RoleOrganizer}, team.ID, model.TeamDisqualified)
	require.NoError(t, err)
	assert.Equal(t, model.TeamDisqualified, got.Status)

	_, err = s.Join(ctx, participant(81), team.InviteCode)
	assert.ErrorIs(t, err, response.ErrConflict)
}
