package storetest

import (
	"context"
	"testing"
	"time"

	"hackathon-platform/internal/model"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// OpenEvent 创建已发布的赛事，报名、提交与评审窗口当前都开放
func OpenEvent(t *testing.T, s *Store, organizerID uint, criteria ...model.Criterion) *model.Event {
	t.Helper()
	now := time.Now()
	judgingEnd := now.Add(72 * time.Hour)
	e := &model.Event{
		Title:              gofakeit.AppName(),
		Description:        gofakeit.Sentence(10),
		OrganizerID:        organizerID,
		StartDate:          now.Add(time.Hour),
		EndDate:            now.Add(48 * time.Hour),
		RegistrationEnd:    now.Add(30 * time.Minute),
		SubmissionDeadline: now.Add(47 * time.Hour),
		JudgingEnd:         &judgingEnd,
		MinTeamSize:        1,
		MaxTeamSize:        3,
		JudgingCriteria:    criteria,
		Status:             model.EventOngoing,
		IsPublished:        true,
	}
	require.NoError(t, s.CreateEvent(context.Background(), e))
	return e
}

// Team 创建 active 队伍，leader 为 admin，其余为普通成员，均已 accepted
func Team(t *testing.T, s *Store, eventID, leaderID uint, memberIDs ...uint) *model.Team {
	t.Helper()
	ctx := context.Background()
	team := &model.Team{
		EventID:    eventID,
		LeaderID:   leaderID,
		Name:       gofakeit.Company() + " " + gofakeit.LetterN(4),
		InviteCode: uuid.NewString(),
		Status:     model.TeamActive,
	}
	require.NoError(t, s.CreateTeam(ctx, team))

	joined := time.Now().Add(-time.Hour)
	for i, uid := range append([]uint{leaderID}, memberIDs...) {
		at := joined.Add(time.Duration(i) * time.Minute)
		role := model.MemberRoleMember
		if uid == leaderID {
			role = model.MemberRoleAdmin
		}
		require.NoError(t, s.SaveTeamMember(ctx, &model.TeamMember{
			TeamID:   team.ID,
			EventID:  eventID,
			UserID:   uid,
			Role:     role,
			Status:   model.MemberAccepted,
			JoinedAt: &at,
		}))
	}
	return team
}

// Judge 添加已接受邀请的评委
func Judge(t *testing.T, s *Store, event *model.Event, userID uint) {
	t.Helper()
	require.NoError(t, s.SaveEventJudge(context.Background(), &model.EventJudge{
		EventID:   event.ID,
		UserID:    userID,
		InvitedBy: event.OrganizerID,
		Status:    model.JudgeAccepted,
	}))
}

// Submission 直接写入一条作品
func Submission(t *testing.T, s *Store, team *model.Team, status model.SubmissionStatus) *model.Submission {
	t.Helper()
	now := time.Now()
	sub := &model.Submission{
		EventID:       team.EventID,
		TeamID:        team.ID,
		SubmittedByID: team.LeaderID,
		Title:         gofakeit.AppName(),
		Description:   gofakeit.Sentence(12),
		GithubURL:     gofakeit.URL(),
		Status:        status,
	}
	if status != model.SubmissionDraft {
		sub.SubmittedAt = &now
	}
	require.NoError(t, s.CreateSubmission(context.Background(), sub))
	return sub
}
