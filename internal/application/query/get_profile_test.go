package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// In-memory fakes shared by the query handler tests.

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

func (r *fakeMemberRepo) add(t *testing.T, id member.ID, messages, comments, books int) *member.Member {
	t.Helper()
	m, err := member.New(id, "reader", time.Now().UTC())
	require.NoError(t, err)
	m.Messages = messages
	m.Comments = comments
	m.Books = books
	r.members[id] = m
	return m
}

func (r *fakeMemberRepo) Register(_ context.Context, id member.ID, handle member.Handle) error {
	if _, ok := r.members[id]; !ok {
		m, err := member.New(id, handle, time.Now().UTC())
		if err != nil {
			return err
		}
		r.members[id] = m
	}
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
	return nil, nil
}

func (r *fakeMemberRepo) Increment(_ context.Context, id member.ID, isComment bool) (int, int, error) {
	m := r.members[id]
	m.RecordMessage(isComment)
	return m.Messages, m.Comments, nil
}

func (r *fakeMemberRepo) SetBooks(_ context.Context, id member.ID, count int) error {
	return r.members[id].SetBooks(count)
}

func (r *fakeMemberRepo) UpdateRanks(_ context.Context, id member.ID, messages, comments, combined string) error {
	r.members[id].ApplyRanks(messages, comments, combined)
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

func profileTestCatalog(t *testing.T) *achievement.Catalog {
	t.Helper()
	return achievement.NewCatalog([]achievement.Definition{
		{Category: "Авто", Code: achievement.CodeFirstChapter, Title: "📖 Первая глава"},
		{Category: "Авто", Code: achievement.CodeCommentMaster, Title: "💬 Мастер комментариев"},
		{Category: "Авто", Code: achievement.CodeMessageMaster, Title: "📨 Мастер сообщений"},
	})
}

// ──────────────────────────────────────────────────────────────────────────────

func TestGetProfile_NotRegistered(t *testing.T) {
	h := NewGetProfileHandler(newFakeMemberRepo(), newFakeLedger(), nil, nil, nil)

	_, err := h.Handle(context.Background(), GetProfileQuery{MemberID: 7})
	assert.ErrorIs(t, err, member.ErrNotRegistered)
}

func TestGetProfile_AutoGrantsOnView(t *testing.T) {
	repo := newFakeMemberRepo()
	ledger := newFakeLedger()
	pub := &fakePublisher{}
	repo.add(t, 7, 120, 60, 1)

	h := NewGetProfileHandler(repo, ledger, profileTestCatalog(t), achievement.NewAutoEvaluator(ledger), pub)
	profile, err := h.Handle(context.Background(), GetProfileQuery{MemberID: 7})
	require.NoError(t, err)

	// Пороговые правила проверяются при каждом просмотре профиля.
	assert.Equal(t, []string{
		achievement.CodeFirstChapter,
		achievement.CodeCommentMaster,
		achievement.CodeMessageMaster,
	}, profile.NewlyGranted)
	assert.Equal(t, []string{
		"📖 Первая глава",
		"💬 Мастер комментариев",
		"📨 Мастер сообщений",
	}, profile.Achievements)
	assert.Len(t, pub.events, 3)

	// Повторный просмотр ничего нового не выдаёт.
	profile, err = h.Handle(context.Background(), GetProfileQuery{MemberID: 7})
	require.NoError(t, err)
	assert.Empty(t, profile.NewlyGranted)
	assert.Len(t, profile.Achievements, 3)
}

func TestGetProfile_ProgressAndFallbackTitles(t *testing.T) {
	repo := newFakeMemberRepo()
	ledger := newFakeLedger()
	repo.add(t, 7, 10, 2, 0)
	require.NoError(t, ledger.Award(context.Background(), 7, "retired_code"))

	h := NewGetProfileHandler(repo, ledger, profileTestCatalog(t), nil, nil)
	profile, err := h.Handle(context.Background(), GetProfileQuery{MemberID: 7})
	require.NoError(t, err)

	assert.Equal(t, []string{"retired_code"}, profile.Achievements)
	assert.Contains(t, profile.Progress, "Ещё 3 комментариев")
	assert.Contains(t, profile.Progress, "Ещё 90 сообщений")
}

func TestGetRecentActivity_LimitsWindow(t *testing.T) {
	repo := newFakeMemberRepo()
	repo.add(t, 7, 1, 0, 0)
	for i := 0; i < 10; i++ {
		repo.activity[7] = append(repo.activity[7], member.DailyActivity{
			MemberID: 7,
			Day:      time.Date(2026, 8, 28-i, 0, 0, 0, 0, time.UTC),
			Messages: i + 1,
		})
	}

	h := NewGetRecentActivityHandler(repo)
	days, err := h.Handle(context.Background(), GetRecentActivityQuery{MemberID: 7})
	require.NoError(t, err)
	assert.Len(t, days, RecentActivityDays)
}

func TestGetRecentActivity_NotRegistered(t *testing.T) {
	h := NewGetRecentActivityHandler(newFakeMemberRepo())

	_, err := h.Handle(context.Background(), GetRecentActivityQuery{MemberID: 7})
	assert.ErrorIs(t, err, member.ErrNotRegistered)
}

func TestGetCatalog_GroupsByCategory(t *testing.T) {
	h := NewGetCatalogHandler(profileTestCatalog(t))

	groups, err := h.Handle(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Авто", groups[0].Name)
	assert.Len(t, groups[0].Items, 3)
}

func TestGetCatalog_NotLoaded(t *testing.T) {
	h := NewGetCatalogHandler(nil)

	_, err := h.Handle(context.Background())
	assert.ErrorIs(t, err, achievement.ErrCatalogNotLoaded)
}
