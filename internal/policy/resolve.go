package policy

import (
	"context"
	"errors"

	"hackathon-platform/internal/model"
	"hackathon-platform/internal/store"
)

// Resolve 查询调用者与赛事（以及 teamID 非 0 时与该队伍）的关系，并返回授予的能力
func Resolve(ctx context.Context, s store.Store, sub Subject, event *model.Event, teamID uint) (Capabilities, error) {
	rel := Relations{Organizer: event.OrganizerID == sub.UserID}

	judge, err := s.GetEventJudge(ctx, event.ID, sub.UserID)
	switch {
	case err == nil:
		rel.Judge = judge.Status == model.JudgeAccepted
	case !errors.Is(err, store.ErrNotFound):
		return 0, err
	}

	if teamID != 0 {
		member, err := s.GetTeamMember(ctx, teamID, sub.UserID)
		switch {
		case err == nil:
			rel.Member = member.Status == model.MemberAccepted
		case !errors.Is(err, store.ErrNotFound):
			return 0, err
		}
	}
	return Grant(sub, rel), nil
}
