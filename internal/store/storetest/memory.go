// Package storetest 内存版 store.Store，供 service/handler 测试使用。
// 与 gorm 实现保持相同的唯一约束（包括软删除行）与事务回滚语义
package storetest

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"hackathon-platform/internal/model"
	"hackathon-platform/internal/store"

	"gorm.io/gorm"
)

type table[T any] struct {
	rows      map[uint]T
	next      uint
	base      func(*T) *model.Model
	conflicts []func(a, b *T) bool
}

func newTable[T any](base func(*T) *model.Model, conflicts ...func(a, b *T) bool) *table[T] {
	return &table[T]{rows: map[uint]T{}, base: base, conflicts: conflicts}
}

func (t *table[T]) clone() *table[T] {
	c := *t
	c.rows = maps.Clone(t.rows)
	return &c
}

func (t *table[T]) check(v *T) error {
	id := t.base(v).ID
	for rid, row := range t.rows {
		if rid == id {
			continue
		}
		for _, conflict := range t.conflicts {
			if conflict(v, &row) {
				return store.ErrDuplicate
			}
		}
	}
	return nil
}

// save 与 gorm Save 一致：ID 为 0 时插入，否则整行覆盖
func (t *table[T]) save(v *T, now time.Time) error {
	if err := t.check(v); err != nil {
		return err
	}
	m := t.base(v)
	if m.ID == 0 {
		t.next++
		m.ID = t.next
		m.CreatedAt = now
	} else if _, ok := t.rows[m.ID]; !ok {
		return store.ErrNotFound
	}
	m.UpdatedAt = now
	t.rows[m.ID] = *v
	return nil
}

func (t *table[T]) get(id uint, withDeleted bool) (*T, error) {
	row, ok := t.rows[id]
	if !ok || (!withDeleted && t.base(&row).DeletedAt.Valid) {
		return nil, store.ErrNotFound
	}
	return &row, nil
}

// find 按 ID 升序返回未删除且满足 match 的行
func (t *table[T]) find(match func(*T) bool) []T {
	var out []T
	for _, row := range t.rows {
		if t.base(&row).DeletedAt.Valid || (match != nil && !match(&row)) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return t.base(&out[i]).ID < t.base(&out[j]).ID })
	return out
}

func (t *table[T]) softDelete(id uint, now time.Time) error {
	row, err := t.get(id, false)
	if err != nil {
		return err
	}
	t.base(row).DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
	t.rows[id] = *row
	return nil
}

type data struct {
	users    *table[model.User]
	events   *table[model.Event]
	judges   *table[model.EventJudge]
	teams    *table[model.Team]
	members  *table[model.TeamMember]
	subs     *table[model.Submission]
	evals    *table[model.Evaluation]
	comments *table[model.Comment]
}

func newData() *data {
	return &data{
		users:  newTable(func(v *model.User) *model.Model { return &v.Model }),
		events: newTable(func(v *model.Event) *model.Model { return &v.Model }),
		judges: newTable(func(v *model.EventJudge) *model.Model { return &v.Model },
			func(a, b *model.EventJudge) bool { return a.EventID == b.EventID && a.UserID == b.UserID }),
		teams: newTable(func(v *model.Team) *model.Model { return &v.Model },
			func(a, b *model.Team) bool { return a.EventID == b.EventID && a.Name == b.Name },
			func(a, b *model.Team) bool { return a.InviteCode == b.InviteCode }),
		members: newTable(func(v *model.TeamMember) *model.Model { return &v.Model },
			func(a, b *model.TeamMember) bool { return a.TeamID == b.TeamID && a.UserID == b.UserID },
			func(a, b *model.TeamMember) bool {
				return a.EventID == b.EventID && a.UserID == b.UserID &&
					a.AcceptedSlot != nil && b.AcceptedSlot != nil
			}),
		subs: newTable(func(v *model.Submission) *model.Model { return &v.Model },
			func(a, b *model.Submission) bool {
				return a.TeamID == b.TeamID && a.EventID == b.EventID &&
					a.ActiveSlot != nil && b.ActiveSlot != nil
			}),
		evals: newTable(func(v *model.Evaluation) *model.Model { return &v.Model },
			func(a, b *model.Evaluation) bool {
				return a.SubmissionID == b.SubmissionID && a.JudgeID == b.JudgeID && a.Round == b.Round
			}),
		comments: newTable(func(v *model.Comment) *model.Model { return &v.Model }),
	}
}

func (d *data) clone() *data {
	return &data{
		users:    d.users.clone(),
		events:   d.events.clone(),
		judges:   d.judges.clone(),
		teams:    d.teams.clone(),
		members:  d.members.clone(),
		subs:     d.subs.clone(),
		evals:    d.evals.clone(),
		comments: d.comments.clone(),
	}
}

type state struct {
	mu   sync.Mutex // 串行化所有操作，事务期间一直持有
	d    *data
	fail map[string]error
	now  func() time.Time
}

// Store 内存实现。根 Store 的每次调用独立加锁；Transaction 内的 tx 复用外层的锁
type Store struct {
	*state
	inTx bool
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: &state{d: newData(), fail: map[string]error{}, now: time.Now}}
}

// FailOn 让名为 op 的方法（如 "UpdateSubmissionScores"）后续调用都返回 err，err 为 nil 时取消
func (s *Store) FailOn(op string, err error) {
	unlock := s.lock()
	defer unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) injected(op string) error {
	return s.fail[op]
}

func (s *Store) Transaction(_ context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(&Store{state: s.state, inTx: true}); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func page[T any](rows []T, p store.Page) []T {
	if p.Offset >= len(rows) {
		return []T{}
	}
	rows = rows[p.Offset:]
	if p.Limit > 0 && p.Limit < len(rows) {
		rows = rows[:p.Limit]
	}
	return rows
}

func (s *Store) GetUser(_ context.Context, id uint) (*model.User, error) {
	defer s.lock()()
	return s.d.users.get(id, false)
}

func (s *Store) FirstOrCreateUser(_ context.Context, u *model.User) error {
	defer s.lock()()
	if existing, err := s.d.users.get(u.ID, false); err == nil {
		*u = *existing
		return nil
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.ID == 0 {
		return s.d.users.save(u, now)
	}
	if u.ID > s.d.users.next {
		s.d.users.next = u.ID
	}
	s.d.users.rows[u.ID] = *u
	return nil
}

func (s *Store) CreateEvent(_ context.Context, e *model.Event) error {
	defer s.lock()()
	if err := s.injected("CreateEvent"); err != nil {
		return err
	}
	e.ID = 0
	return s.d.events.save(e, s.now())
}

func (s *Store) GetEvent(_ context.Context, id uint) (*model.Event, error) {
	defer s.lock()()
	return s.d.events.get(id, false)
}

func (s *Store) SaveEvent(_ context.Context, e *model.Event) error {
	defer s.lock()()
	return s.d.events.save(e, s.now())
}

func (s *Store) DeleteEvent(_ context.Context, id uint) error {
	defer s.lock()()
	return s.d.events.softDelete(id, s.now())
}

func (s *Store) ListEvents(_ context.Context, f store.EventFilter) ([]model.Event, int64, error) {
	defer s.lock()()
	events := s.d.events.find(func(e *model.Event) bool {
		if !f.PublishedOnly {
			return true
		}
		return e.IsPublished || (f.OrganizerID != 0 && e.OrganizerID == f.OrganizerID)
	})
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].StartDate.After(events[j].StartDate)
		}
		return events[i].ID > events[j].ID
	})
	return page(events, f.Page), int64(len(events)), nil
}

func (s *Store) GetEventJudge(_ context.Context, eventID, userID uint) (*model.EventJudge, error) {
	defer s.lock()()
	judges := s.d.judges.find(func(j *model.EventJudge) bool { return j.EventID == eventID && j.UserID == userID })
	if len(judges) == 0 {
		return nil, store.ErrNotFound
	}
	return &judges[0], nil
}

func (s *Store) SaveEventJudge(_ context.Context, j *model.EventJudge) error {
	defer s.lock()()
	return s.d.judges.save(j, s.now())
}

func (s *Store) ListEventJudges(_ context.Context, eventID uint) ([]model.EventJudge, error) {
	defer s.lock()()
	return s.d.judges.find(func(j *model.EventJudge) bool { return j.EventID == eventID }), nil
}

func (s *Store) CreateTeam(_ context.Context, t *model.Team) error {
	defer s.lock()()
	t.ID = 0
	row := *t
	row.Members = nil
	if err := s.d.teams.save(&row, s.now()); err != nil {
		return err
	}
	t.Model = row.Model
	return nil
}

func (s *Store) GetTeam(_ context.Context, id uint) (*model.Team, error) {
	defer s.lock()()
	return s.d.teams.get(id, false)
}

func (s *Store) LockTeam(ctx context.Context, id uint) (*model.Team, error) {
	return s.GetTeam(ctx, id)
}

func (s *Store) GetTeamByInviteCode(_ context.Context, code string) (*model.Team, error) {
	defer s.lock()()
	teams := s.d.teams.find(func(t *model.Team) bool { return t.InviteCode == code })
	if len(teams) == 0 {
		return nil, store.ErrNotFound
	}
	return &teams[0], nil
}

func (s *Store) SaveTeam(_ context.Context, t *model.Team) error {
	defer s.lock()()
	row := *t
	row.Members = nil
	if err := s.d.teams.save(&row, s.now()); err != nil {
		return err
	}
	t.Model = row.Model
	return nil
}

func (s *Store) ListTeams(_ context.Context, eventID uint) ([]model.Team, error) {
	defer s.lock()()
	return s.d.teams.find(func(t *model.Team) bool { return t.EventID == eventID }), nil
}

func (s *Store) GetTeamMember(_ context.Context, teamID, userID uint) (*model.TeamMember, error) {
	defer s.lock()()
	members := s.d.members.find(func(m *model.TeamMember) bool { return m.TeamID == teamID && m.UserID == userID })
	if len(members) == 0 {
		return nil, store.ErrNotFound
	}
	return &members[0], nil
}

func (s *Store) FindAcceptedMembership(_ context.Context, eventID, userID uint) (*model.TeamMember, error) {
	defer s.lock()()
	members := s.d.members.find(func(m *model.TeamMember) bool {
		return m.EventID == eventID && m.UserID == userID && m.Status == model.MemberAccepted
	})
	if len(members) == 0 {
		return nil, store.ErrNotFound
	}
	return &members[0], nil
}

func (s *Store) ListTeamMembers(_ context.Context, teamID uint, statuses ...model.MemberStatus) ([]model.TeamMember, error) {
	defer s.lock()()
	members := s.d.members.find(func(m *model.TeamMember) bool {
		return m.TeamID == teamID && (len(statuses) == 0 || slices.Contains(statuses, m.Status))
	})
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i].JoinedAt, members[j].JoinedAt
		switch {
		case a == nil || b == nil:
			return a == nil && b != nil
		default:
			return a.Before(*b)
		}
	})
	return members, nil
}

func (s *Store) SaveTeamMember(_ context.Context, m *model.TeamMember) error {
	defer s.lock()()
	m.SyncSlot()
	return s.d.members.save(m, s.now())
}

func (s *Store) CreateSubmission(_ context.Context, sub *model.Submission) error {
	defer s.lock()()
	if err := s.injected("CreateSubmission"); err != nil {
		return err
	}
	sub.ID = 0
	sub.SyncSlot()
	return s.d.subs.save(sub, s.now())
}

func (s *Store) GetSubmission(_ context.Context, id uint) (*model.Submission, error) {
	defer s.lock()()
	return s.d.subs.get(id, false)
}

func (s *Store) LockSubmission(ctx context.Context, id uint) (*model.Submission, error) {
	return s.GetSubmission(ctx, id)
}

func (s *Store) ListTeamSubmissions(_ context.Context, teamID, eventID uint) ([]model.Submission, error) {
	defer s.lock()()
	return s.d.subs.find(func(sub *model.Submission) bool {
		return sub.TeamID == teamID && sub.EventID == eventID
	}), nil
}

func (s *Store) ListSubmissions(_ context.Context, f store.SubmissionFilter) ([]model.Submission, int64, error) {
	defer s.lock()()
	subs := s.d.subs.find(func(sub *model.Submission) bool {
		return sub.EventID == f.EventID && (f.Status == "" || sub.Status == f.Status)
	})
	return page(subs, f.Page), int64(len(subs)), nil
}

func (s *Store) SaveSubmission(_ context.Context, sub *model.Submission) error {
	defer s.lock()()
	if err := s.injected("SaveSubmission"); err != nil {
		return err
	}
	// 分数列保持存储中的值
	if stored, ok := s.d.subs.rows[sub.ID]; ok {
		sub.AverageScore = stored.AverageScore
		sub.TotalEvaluations = stored.TotalEvaluations
	}
	sub.SyncSlot()
	return s.d.subs.save(sub, s.now())
}

func (s *Store) DeleteSubmission(_ context.Context, id uint) error {
	defer s.lock()()
	sub, err := s.d.subs.get(id, false)
	if err != nil {
		return err
	}
	now := s.now()
	sub.ActiveSlot = nil
	s.d.subs.rows[id] = *sub
	if err := s.d.subs.softDelete(id, now); err != nil {
		return err
	}
	for _, e := range s.d.evals.find(func(e *model.Evaluation) bool { return e.SubmissionID == id }) {
		_ = s.d.evals.softDelete(e.ID, now)
	}
	for _, c := range s.d.comments.find(func(c *model.Comment) bool { return c.SubmissionID == id }) {
		_ = s.d.comments.softDelete(c.ID, now)
	}
	return nil
}

func (s *Store) UpdateSubmissionScores(_ context.Context, id uint, average *float64, total int) error {
	defer s.lock()()
	if err := s.injected("UpdateSubmissionScores"); err != nil {
		return err
	}
	sub, err := s.d.subs.get(id, true)
	if err != nil {
		return err
	}
	sub.AverageScore = average
	sub.TotalEvaluations = total
	sub.UpdatedAt = s.now()
	s.d.subs.rows[id] = *sub
	return nil
}

func (s *Store) ListRankedSubmissions(_ context.Context, eventID uint, p store.Page) ([]model.Submission, int64, error) {
	defer s.lock()()
	subs := s.d.subs.find(func(sub *model.Submission) bool {
		return sub.EventID == eventID && sub.Status == model.SubmissionSubmitted
	})
	sort.SliceStable(subs, func(i, j int) bool { return model.RankBefore(&subs[i], &subs[j]) })
	return page(subs, p), int64(len(subs)), nil
}

func (s *Store) FindEvaluation(_ context.Context, submissionID, judgeID uint, round int) (*model.Evaluation, error) {
	defer s.lock()()
	for _, e := range s.d.evals.rows {
		if e.SubmissionID == submissionID && e.JudgeID == judgeID && e.Round == round {
			return &e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetEvaluation(_ context.Context, id uint) (*model.Evaluation, error) {
	defer s.lock()()
	return s.d.evals.get(id, false)
}

func (s *Store) CreateEvaluation(_ context.Context, e *model.Evaluation) error {
	defer s.lock()()
	if err := s.injected("CreateEvaluation"); err != nil {
		return err
	}
	e.ID = 0
	return s.d.evals.save(e, s.now())
}

func (s *Store) SaveEvaluation(_ context.Context, e *model.Evaluation) error {
	defer s.lock()()
	if err := s.injected("SaveEvaluation"); err != nil {
		return err
	}
	e.DeletedAt = gorm.DeletedAt{}
	return s.d.evals.save(e, s.now())
}

func (s *Store) DeleteEvaluation(_ context.Context, id uint) error {
	defer s.lock()()
	return s.d.evals.softDelete(id, s.now())
}

func (s *Store) ListEvaluations(_ context.Context, submissionID uint) ([]model.Evaluation, error) {
	defer s.lock()()
	evals := s.d.evals.find(func(e *model.Evaluation) bool { return e.SubmissionID == submissionID })
	sort.SliceStable(evals, func(i, j int) bool { return evals[i].Round < evals[j].Round })
	return evals, nil
}

func (s *Store) ListEvaluationScores(_ context.Context, submissionID uint) ([]float64, error) {
	defer s.lock()()
	var scores []float64
	for _, e := range s.d.evals.find(func(e *model.Evaluation) bool { return e.SubmissionID == submissionID }) {
		scores = append(scores, e.Score)
	}
	return scores, nil
}

func (s *Store) CreateComment(_ context.Context, c *model.Comment) error {
	defer s.lock()()
	c.ID = 0
	return s.d.comments.save(c, s.now())
}

func (s *Store) ListComments(_ context.Context, submissionID uint) ([]model.Comment, error) {
	defer s.lock()()
	return s.d.comments.find(func(c *model.Comment) bool { return c.SubmissionID == submissionID }), nil
}
