package command

import (
	"context"
	"sort"
	"time"

	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/rank"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// In-memory fakes shared by the command handler tests.

type fakeMemberRepo struct {
	members  map[member.ID]*member.Member
	activity map[member.ID][]member.DailyActivity
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		members:  make(map[member.ID]*member.Member),
		activity: make(map[member.ID][]member.DailyActivity),
	}
}

func (r *fakeMemberRepo) Register(_ context.Context, id member.ID, handle member.Handle) error {
	if m, ok := r.members[id]; ok {
		if handle != "" {
			m.Handle = handle
		}
		return nil
	}
	m, err := member.New(id, handle, time.Now().UTC())
	if err != nil {
		return err
	}
	m.ApplyRanks(rank.SentinelMessages, rank.SentinelComments, rank.SentinelCombined)
	r.members[id] = m
	return nil
}

func (r *fakeMemberRepo) GetByID(_ context.Context, id member.ID) (*member.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, member.ErrNotRegistered
	}
	return m.Clone(), nil
}

func (r *fakeMemberRepo) GetAll(_ context.Context) ([]member.ListEntry, error) {
	entries := make([]member.ListEntry, 0, len(r.members))
	for _, m := range r.members {
		entries = append(entries, member.ListEntry{ID: m.ID, Handle: m.Handle})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Handle < entries[j].Handle })
	return entries, nil
}

func (r *fakeMemberRepo) Increment(_ context.Context, id member.ID, isComment bool) (int, int, error) {
	m, ok := r.members[id]
	if !ok {
		return 0, 0, member.ErrNotRegistered
	}
	m.RecordMessage(isComment)
	return m.Messages, m.Comments, nil
}

func (r *fakeMemberRepo) SetBooks(_ context.Context, id member.ID, count int) error {
	m, ok := r.members[id]
	if !ok {
		return member.ErrNotRegistered
	}
	return m.SetBooks(count)
}

func (r *fakeMemberRepo) UpdateRanks(_ context.Context, id member.ID, messages, comments, combined string) error {
	m, ok := r.members[id]
	if !ok {
		return member.ErrNotRegistered
	}
	m.ApplyRanks(messages, comments, combined)
	return nil
}

func (r *fakeMemberRepo) GetRecentActivity(_ context.Context, id member.ID, limit int) ([]member.DailyActivity, error) {
	days := r.activity[id]
	if len(days) > limit {
		days = days[:limit]
	}
	return days, nil
}

type fakeLedger struct {
	awards map[member.ID][]string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{awards: make(map[member.ID][]string)}
}

func (l *fakeLedger) Award(_ context.Context, id member.ID, code string) error {
	for _, held := range l.awards[id] {
		if held == code {
			return nil
		}
	}
	l.awards[id] = append(l.awards[id], code)
	return nil
}

func (l *fakeLedger) Has(_ context.Context, id member.ID, code string) (bool, error) {
	for _, held := range l.awards[id] {
		if held == code {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) ListByMember(_ context.Context, id member.ID) ([]string, error) {
	return append([]string(nil), l.awards[id]...), nil
}

type fakePublisher struct {
	events []shared.Event
}

func (p *fakePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) byType(t shared.EventType) []shared.Event {
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}
