package leaderboard

import (
	"context"
	"testing"

	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/policy"
	"hackathon-platform/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	organizer   = policy.Subject{UserID: 1, Role: model.RoleOrganizer}
	admin       = policy.Subject{UserID: 99, Role: model.RoleAdmin}
	participant = policy.Subject{UserID: 50, Role: model.RoleParticipant}
)

func ptr(v float64) *float64 { return &v }

// seed 三份已提交作品，平均分 70/85.556/无
func seed(t *testing.T, public bool) (*storetest.Store, *model.Event, []uint) {
	t.Helper()
	mem := storetest.New()
	ctx := context.Background()
	e := storetest.OpenEvent(t, mem, organizer.UserID)
	e.IsLeaderboardPublic = public
	require.NoError(t, mem.SaveEvent(ctx, e))

	var ids []uint
	for i, avg := range []*float64{ptr(70), ptr(85.556), nil} {
		sub := storetest.Submission(t, mem, storetest.Team(t, mem, e.ID, uint(100+i)), model.SubmissionSubmitted)
		count := 0
		if avg != nil {
			count = 2
		}
		require.NoError(t, mem.UpdateSubmissionScores(ctx, sub.ID, avg, count))
		ids = append(ids, sub.ID)
	}
	return mem, e, ids
}

func TestPublicLeaderboard(t *testing.T) {
	mem, e, ids := seed(t, true)
	svc := NewService(mem, nil)

	board, err := svc.Get(context.Background(), nil, e.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, ids[1], board.Entries[0].SubmissionID)
	assert.Equal(t, 85.56, *board.Entries[0].AverageScore)
	assert.Equal(t, ids[2], board.Entries[2].SubmissionID)
	assert.Equal(t, 20, board.Limit)

	board, err = svc.Get(context.Background(), &participant, e.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 2, board.Entries[0].Rank)
	assert.Equal(t, int64(3), board.Total)
}

func TestPrivateLeaderboard(t *testing.T) {
	mem, e, _ := seed(t, false)
	svc := NewService(mem, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, nil, e.ID, 10, 0)
	assert.ErrorIs(t, err, response.ErrUnauthorized)
	_, err = svc.Get(ctx, &participant, e.ID, 10, 0)
	assert.ErrorIs(t, err, response.ErrForbidden)

	for _, caller := range []policy.Subject{organizer, admin} {
		board, err := svc.Get(ctx, &caller, e.ID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, board.Entries, 3)
	}
}

func TestUnpublishedEventHidden(t *testing.T) {
	mem, e, _ := seed(t, true)
	e.IsPublished = false
	require.NoError(t, mem.SaveEvent(context.Background(), e))
	svc := NewService(mem, nil)

	_, err := svc.Get(context.Background(), &participant, e.ID, 10, 0)
	assert.ErrorIs(t, err, response.ErrNotFound)
	_, err = svc.Get(context.Background(), &organizer, e.ID, 10, 0)
	assert.NoError(t, err)
	_, err = svc.Get(context.Background(), nil, 9999, 10, 0)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestExport(t *testing.T) {
	mem, e, _ := seed(t, true)
	svc := NewService(mem, nil)

	_, _, err := svc.Export(context.Background(), participant, e.ID)
	assert.ErrorIs(t, err, response.ErrForbidden)

	got, entries, err := svc.Export(context.Background(), organizer, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}
