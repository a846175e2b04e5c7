package submission

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"hackathon-platform/internal/global/eventbus"
	"hackathon-platform/internal/global/response"
	"hackathon-platform/internal/global/storage"
	"hackathon-platform/internal/model"
	"hackathon-platform/internal/policy"
	"hackathon-platform/internal/scoring"
	"hackathon-platform/internal/store"
	"hackathon-platform/internal/store/storetest"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	err    error
	calls  int
	during func() // 上传过程中执行，模拟并发写入
}

func (f *fakeStorage) Upload(_ context.Context, fh *multipart.FileHeader) (*storage.Uploaded, error) {
	f.calls++
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &storage.Uploaded{
		URL:         "https://files.example.com/" + fh.Filename,
		Key:         fh.Filename,
		ContentType: "application/zip",
		Size:        fh.Size,
	}, nil
}

type invalidations struct {
	mu     sync.Mutex
	events []uint
}

func (i *invalidations) Invalidate(_ context.Context, eventID uint) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.events = append(i.events, eventID)
}

type fixture struct {
	mem   *storetest.Store
	files *fakeStorage
	lb    *invalidations
	svc   *Service
	event *model.Event
	team  *model.Team
}

// newFixture 赛事 + 队伍(100 队长, 101 队员)，另一支队伍(200 队长)
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{mem: storetest.New(), files: &fakeStorage{}, lb: &invalidations{}}
	f.svc = NewService(f.mem, f.files, eventbus.Discard, f.lb, 1<<20)
	f.event = storetest.OpenEvent(t, f.mem, 1)
	f.team = storetest.Team(t, f.mem, f.event.ID, 100, 101)
	storetest.Team(t, f.mem, f.event.ID, 200)
	return f
}

func member(id uint) policy.Subject {
	return policy.Subject{UserID: id, Role: model.RoleParticipant}
}

func (f *fixture) req(draft bool) CreateReq {
	return CreateReq{
		EventID:     f.event.ID,
		TeamID:      f.team.ID,
		Title:       gofakeit.AppName(),
		Description: gofakeit.Sentence(10),
		GithubURL:   "https://github.com/example/project",
		Draft:       draft,
	}
}

func TestCreateOnlyOneNonDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub, err := f.svc.Create(ctx, member(100), f.req(false), nil)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionSubmitted, sub.Status)
	assert.NotNil(t, sub.SubmittedAt)
	assert.Nil(t, sub.AverageScore)
	assert.Zero(t, sub.TotalEvaluations)

	for _, uid := range []uint{100, 101} {
		_, err := f.svc.Create(ctx, member(uid), f.req(false), nil)
		assert.ErrorIs(t, err, response.ErrConflict, "任何队员都不能重复提交")
	}
	_, err = f.svc.Create(ctx, member(101), f.req(true), nil)
	assert.ErrorIs(t, err, response.ErrConflict, "已有作品时不能建草稿")

	assert.Equal(t, []uint{f.event.ID}, f.lb.events)
}

func TestCreateChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("其他队伍的成员", func(t *testing.T) {
		_, err := f.svc.Create(ctx, member(200), f.req(false), nil)
		assert.ErrorIs(t, err, response.ErrForbidden)
	})
	t.Run("管理员也不能代替队伍提交", func(t *testing.T) {
		_, err := f.svc.Create(ctx, policy.Subject{UserID: 9, Role: model.RoleAdmin}, f.req(false), nil)
		assert.ErrorIs(t, err, response.ErrForbidden)
	})
	t.Run("赛事不存在", func(t *testing.T) {
		req := f.req(false)
		req.EventID = 999
		_, err := f.svc.Create(ctx, member(100), req, nil)
		assert.ErrorIs(t, err, response.ErrNotFound)
	})
	t.Run("队伍不属于赛事", func(t *testing.T) {
		other := storetest.OpenEvent(t, f.mem, 1)
		req := f.req(false)
		req.EventID = other.ID
		_, err := f.svc.Create(ctx, member(100), req, nil)
		assert.ErrorIs(t, err, response.ErrNotFound)
	})
	t.Run("提交截止", func(t *testing.T) {
		f.svc.now = func() time.Time { return f.event.SubmissionDeadline.Add(time.Second) }
		defer func() { f.svc.now = time.Now }()
		_, err := f.svc.Create(ctx, member(100), f.req(false), nil)
		assert.ErrorIs(t, err, response.ErrClosedWindow)
	})
}

func TestUploadFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.files.err = errors.New("bucket unavailable")

	_, err := f.svc.Create(ctx, member(100), f.req(false), &multipart.FileHeader{Filename: "demo.zip", Size: 512})
	assert.ErrorIs(t, err, response.ErrUpload)
	subs, err := f.mem.ListTeamSubmissions(ctx, f.team.ID, f.event.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	f.files.err = nil
	_, err = f.svc.Create(ctx, member(100), f.req(false), &multipart.FileHeader{Filename: "huge.zip", Size: 2 << 20})
	assert.ErrorIs(t, err, response.ErrValidation)
	assert.Equal(t, 1, f.files.calls, "超限文件不上传")

	sub, err := f.svc.Create(ctx, member(100), f.req(false), &multipart.FileHeader{Filename: "demo.zip", Size: 512})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/demo.zip", sub.FileURL)
	assert.Equal(t, int64(512), sub.FileSize)
	assert.Equal(t, "application/zip", sub.FileType)
}

func TestDraftLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.svc.Create(ctx, member(100), f.req(true), nil)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionDraft, draft.Status)
	assert.Nil(t, draft.SubmittedAt)
	assert.Empty(t, f.lb.events, "草稿不影响排行榜")

	_, err = f.svc.Create(ctx, member(101), f.req(true), nil)
	assert.ErrorIs(t, err, response.ErrConflict)

	promoted, err := f.svc.Create(ctx, member(101), f.req(false), nil)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, promoted.ID, "草稿原地转为正式提交")
	assert.Equal(t, model.SubmissionSubmitted, promoted.Status)
	assert.Equal(t, uint(101), promoted.SubmittedByID)

	_, err = f.svc.Submit(ctx, member(100), promoted.ID)
	assert.ErrorIs(t, err, response.ErrConflict, "只有草稿可以提交")
}

func TestSubmitDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := storetest.Submission(t, f.mem, f.team, model.SubmissionDraft)

	_, err := f.svc.Submit(ctx, member(200), draft.ID)
	assert.ErrorIs(t, err, response.ErrForbidden)

	sub, err := f.svc.Submit(ctx, member(101), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionSubmitted, sub.Status)
	assert.NotNil(t, sub.SubmittedAt)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := storetest.Submission(t, f.mem, f.team, model.SubmissionSubmitted)

	title := "Renamed"
	got, err := f.svc.Update(ctx, member(101), sub.ID, UpdateReq{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	_, err = f.svc.Update(ctx, member(200), sub.ID, UpdateReq{Title: &title}, nil)
	assert.ErrorIs(t, err, response.ErrForbidden)

	organizer := policy.Subject{UserID: 1, Role: model.RoleOrganizer}
	_, err = f.svc.SetStatus(ctx, organizer, sub.ID, model.SubmissionUnderReview)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, member(101), sub.ID, UpdateReq{Title: &title}, nil)
	assert.ErrorIs(t, err, response.ErrConflict, "评审中不能修改")
}

func TestUpdateKeepsConcurrentScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := storetest.Submission(t, f.mem, f.team, model.SubmissionSubmitted)

	f.files.during = func() {
		require.NoError(t, f.mem.CreateEvaluation(ctx, &model.Evaluation{
			SubmissionID: sub.ID, JudgeID: 9, Round: 1, EventID: f.event.ID, Score: 80, Status: model.EvaluationSubmitted,
		}))
		_, _, err := scoring.Recalculate(ctx, f.mem, sub.ID)
		require.NoError(t, err)
	}
	title := "Renamed"
	got, err := f.svc.Update(ctx, member(101), sub.ID, UpdateReq{Title: &title}, &multipart.FileHeader{Filename: "v2.zip", Size: 256})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/v2.zip", got.FileURL)

	stored, err := f.mem.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	require.NotNil(t, stored.AverageScore)
	assert.Equal(t, 80.0, *stored.AverageScore)
	assert.Equal(t, 1, stored.TotalEvaluations)
	assert.Equal(t, stored.AverageScore, got.AverageScore)

	// 状态变更同样不覆盖分数
	organizer := policy.Subject{UserID: 1, Role: model.RoleOrganizer}
	_, err = f.svc.SetStatus(ctx, organizer, sub.ID, model.SubmissionUnderReview)
	require.NoError(t, err)
	stored, err = f.mem.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalEvaluations)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := storetest.Submission(t, f.mem, f.team, model.SubmissionSubmitted)
	organizer := policy.Subject{UserID: 1, Role: model.RoleOrganizer}

	_, err := f.svc.SetStatus(ctx, member(100), sub.ID, model.SubmissionAccepted)
	assert.ErrorIs(t, err, response.ErrForbidden)
	_, err = f.svc.SetStatus(ctx, organizer, sub.ID, model.SubmissionDraft)
	assert.ErrorIs(t, err, response.ErrValidation)

	got, err := f.svc.SetStatus(ctx, organizer, sub.ID, model.SubmissionAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionAccepted, got.Status)

	// 非草稿状态之间切换仍占用唯一槽位
	_, err = f.svc.Create(ctx, member(100), f.req(false), nil)
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := storetest.Submission(t, f.mem, f.team, model.SubmissionSubmitted)
	require.NoError(t, f.mem.CreateEvaluation(ctx, &model.Evaluation{SubmissionID: sub.ID, JudgeID: 7, Round: 1, EventID: f.event.ID, Score: 80}))
	_, err := f.svc.AddComment(ctx, member(100), sub.ID, "demo video updated")
	require.NoError(t, err)

	err = f.svc.Delete(ctx, member(200), sub.ID)
	assert.ErrorIs(t, err, response.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, member(101), sub.ID))
	_, err = f.svc.Get(ctx, member(101), sub.ID)
	assert.ErrorIs(t, err, response.ErrNotFound)
	evals, err := f.mem.ListEvaluations(ctx, sub.ID)
	require.NoError(t, err)
	assert.Empty(t, evals)
	comments, err := f.mem.ListComments(ctx, sub.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	again, err := f.svc.Create(ctx, member(100), f.req(false), nil)
	require.NoError(t, err, "删除后可以重新提交")
	assert.NotEqual(t, sub.ID, again.ID)
}

func TestVisibilityAndLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	submitted := storetest.Submission(t, f.mem, f.team, model.SubmissionSubmitted)
	otherTeam := storetest.Team(t, f.mem, f.event.ID, 300)
	draft := storetest.Submission(t, f.mem, otherTeam, model.SubmissionDraft)
	storetest.Judge(t, f.mem, f.event, 7)
	judge := policy.Subject{UserID: 7, Role: model.RoleJudge}

	_, err := f.svc.Get(ctx, member(200), submitted.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, member(200), draft.ID)
	assert.ErrorIs(t, err, response.ErrNotFound)
	_, err = f.svc.Get(ctx, member(300), draft.ID)
	assert.NoError(t, err)

	_, _, err = f.svc.ListByEvent(ctx, member(100), f.event.ID, "", store.Page{Limit: 10})
	assert.ErrorIs(t, err, response.ErrForbidden)
	subs, total, err := f.svc.ListByEvent(ctx, judge, f.event.ID, model.SubmissionSubmitted, store.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, submitted.ID, subs[0].ID)

	own, err := f.svc.ListByTeam(ctx, member(300), otherTeam.ID)
	require.NoError(t, err)
	assert.Len(t, own, 1)
	_, err = f.svc.ListByTeam(ctx, member(100), otherTeam.ID)
	assert.ErrorIs(t, err, response.ErrForbidden)

	_, err = f.svc.AddComment(ctx, judge, submitted.ID, "nice work")
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, member(200), submitted.ID, "spam")
	assert.ErrorIs(t, err, response.ErrForbidden)
	comments, err := f.svc.ListComments(ctx, member(100), submitted.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestPresignRequiresS3(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Presign(context.Background(), member(100), PresignReq{EventID: f.event.ID, TeamID: f.team.ID, Filename: "demo.zip"})
	assert.ErrorIs(t, err, response.ErrInvalidRequest)
}
