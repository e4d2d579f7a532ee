package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/shared"
)

func grantTestCatalog(t *testing.T) *achievement.Catalog {
	t.Helper()
	return achievement.NewCatalog([]achievement.Definition{
		{Category: "Активность", Code: "night_owl", Title: "🦉 Ночная сова"},
	})
}

func TestGrantAchievement_Success(t *testing.T) {
	repo := newFakeMemberRepo()
	ledger := newFakeLedger()
	pub := &fakePublisher{}
	require.NoError(t, repo.Register(context.Background(), 7, "reader"))

	h := NewGrantAchievementHandler(repo, ledger, grantTestCatalog(t), pub)
	res, err := h.Handle(context.Background(), GrantAchievementCommand{MemberID: 7, Code: "night_owl"})
	require.NoError(t, err)
	assert.Equal(t, "🦉 Ночная сова", res.Title)

	held, err := ledger.Has(context.Background(), 7, "night_owl")
	require.NoError(t, err)
	assert.True(t, held)

	events := pub.byType(shared.EventAchievementAwarded)
	require.Len(t, events, 1)
	assert.Equal(t, "admin", events[0].(shared.AchievementAwardedEvent).Source)
}

func TestGrantAchievement_RepeatIsIdempotent(t *testing.T) {
	repo := newFakeMemberRepo()
	ledger := newFakeLedger()
	require.NoError(t, repo.Register(context.Background(), 7, "reader"))

	h := NewGrantAchievementHandler(repo, ledger, grantTestCatalog(t), &fakePublisher{})
	for i := 0; i < 3; i++ {
		_, err := h.Handle(context.Background(), GrantAchievementCommand{MemberID: 7, Code: "night_owl"})
		require.NoError(t, err)
	}

	codes, err := ledger.ListByMember(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"night_owl"}, codes)
}

func TestGrantAchievement_UnknownCodeFallsBackToCode(t *testing.T) {
	repo := newFakeMemberRepo()
	require.NoError(t, repo.Register(context.Background(), 7, "reader"))

	h := NewGrantAchievementHandler(repo, newFakeLedger(), grantTestCatalog(t), &fakePublisher{})
	res, err := h.Handle(context.Background(), GrantAchievementCommand{MemberID: 7, Code: "legacy_code"})
	require.NoError(t, err)
	assert.Equal(t, "legacy_code", res.Title)
}

func TestGrantAchievement_MemberNotRegistered(t *testing.T) {
	h := NewGrantAchievementHandler(newFakeMemberRepo(), newFakeLedger(), nil, &fakePublisher{})

	_, err := h.Handle(context.Background(), GrantAchievementCommand{MemberID: 7, Code: "night_owl"})
	assert.ErrorIs(t, err, member.ErrNotRegistered)
}

func TestGrantAchievement_EmptyCode(t *testing.T) {
	h := NewGrantAchievementHandler(newFakeMemberRepo(), newFakeLedger(), nil, &fakePublisher{})

	_, err := h.Handle(context.Background(), GrantAchievementCommand{MemberID: 7})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
