package policy_test

import (
	"context"
	"testing"

	"hackathon-platform/internal/model"
	"hackathon-platform/internal/policy"
	"hackathon-platform/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	event := &model.Event{Title: "e", OrganizerID: 1}
	require.NoError(t, s.CreateEvent(ctx, event))
	require.NoError(t, s.SaveEventJudge(ctx, &model.EventJudge{EventID: event.ID, UserID: 2, InvitedBy: 1, Status: model.JudgeAccepted}))
	require.NoError(t, s.SaveEventJudge(ctx, &model.EventJudge{EventID: event.ID, UserID: 3, InvitedBy: 1, Status: model.JudgePending}))
	require.NoError(t, s.SaveTeamMember(ctx, &model.TeamMember{TeamID: 10, EventID: event.ID, UserID: 4, Status: model.MemberAccepted}))
	require.NoError(t, s.SaveTeamMember(ctx, &model.TeamMember{TeamID: 11, EventID: event.ID, UserID: 5, Status: model.MemberLeft}))

	caps := func(userID uint, role model.Role, teamID uint) policy.Capabilities {
		c, err := policy.Resolve(ctx, s, policy.Subject{UserID: userID, Role: role}, event, teamID)
		require.NoError(t, err)
		return c
	}

	assert.True(t, caps(1, model.RoleOrganizer, 0).Has(policy.CanOrganize))
	assert.True(t, caps(2, model.RoleJudge, 0).Has(policy.CanJudge))
	assert.False(t, caps(3, model.RoleJudge, 0).Has(policy.CanJudge), "未接受邀请")
	assert.True(t, caps(4, model.RoleParticipant, 10).Has(policy.CanSubmit))
	assert.False(t, caps(4, model.RoleParticipant, 11).Has(policy.CanSubmit), "其他队伍")
	assert.False(t, caps(5, model.RoleParticipant, 11).Has(policy.CanSubmit), "已离队")
	assert.True(t, caps(9, model.RoleAdmin, 0).Has(policy.CanAdmin))
}
