package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/rank"
	"github.com/ficben/achievebot/internal/domain/shared"
)

func seedMember(t *testing.T, repo *fakeMemberRepo, id member.ID, messages, comments int) {
	t.Helper()
	require.NoError(t, repo.Register(context.Background(), id, "reader"))
	m := repo.members[id]
	m.Messages = messages
	m.Comments = comments
	ranks := rank.Compute(messages, comments)
	m.ApplyRanks(ranks.Messages, ranks.Comments, ranks.Combined)
}

func TestRecordActivity_RegistersUnknownAuthor(t *testing.T) {
	repo := newFakeMemberRepo()
	pub := &fakePublisher{}
	h := NewRecordActivityHandler(repo, pub)

	res, err := h.Handle(context.Background(), RecordActivityCommand{
		MemberID: 7, Handle: "newcomer", ChatID: -100, MessageID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Messages)
	assert.Equal(t, 0, res.Comments)

	m, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, member.Handle("newcomer"), m.Handle)
	assert.Equal(t, rank.SentinelMessages, m.RankMessages)
	// Первое сообщение не пересекает порогов - без поздравления.
	assert.Empty(t, pub.events)
}

func TestRecordActivity_CommentIncrementsBothCounters(t *testing.T) {
	repo := newFakeMemberRepo()
	h := NewRecordActivityHandler(repo, &fakePublisher{})

	res, err := h.Handle(context.Background(), RecordActivityCommand{
		MemberID: 7, IsComment: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Messages)
	assert.Equal(t, 1, res.Comments)
}

func TestRecordActivity_PublishesRankChangeOnThreshold(t *testing.T) {
	repo := newFakeMemberRepo()
	pub := &fakePublisher{}
	h := NewRecordActivityHandler(repo, pub)
	seedMember(t, repo, 7, 99, 0)

	res, err := h.Handle(context.Background(), RecordActivityCommand{
		MemberID: 7, ChatID: -100, MessageID: 42,
	})
	require.NoError(t, err)

	require.Len(t, res.RankDiff, 1)
	assert.Equal(t, "🗨 Болтун", res.RankDiff[rank.TrackMessages])

	events := pub.byType(shared.EventRankChanged)
	require.Len(t, events, 1)
	evt := events[0].(shared.RankChangedEvent)
	assert.EqualValues(t, 7, evt.MemberID)
	assert.EqualValues(t, -100, evt.ChatID)
	assert.EqualValues(t, 42, evt.ReplyToMessageID)
	assert.Equal(t, map[string]string{"messages": "🗨 Болтун"}, evt.Changed)
}

func TestRecordActivity_NoEventBetweenThresholds(t *testing.T) {
	repo := newFakeMemberRepo()
	pub := &fakePublisher{}
	h := NewRecordActivityHandler(repo, pub)
	seedMember(t, repo, 7, 150, 0)

	res, err := h.Handle(context.Background(), RecordActivityCommand{MemberID: 7})
	require.NoError(t, err)
	assert.True(t, res.RankDiff.IsEmpty())
	assert.Empty(t, pub.events)
}

func TestRecordActivity_StoresRanksUnconditionally(t *testing.T) {
	repo := newFakeMemberRepo()
	h := NewRecordActivityHandler(repo, &fakePublisher{})

	// Сохранённое звание отстало от счётчиков - строка должна
	// самовосстановиться при следующей активности.
	require.NoError(t, repo.Register(context.Background(), 7, "reader"))
	m := repo.members[7]
	m.Messages = 150
	m.RankMessages = rank.SentinelMessages
	m.RankComments = rank.SentinelComments
	m.RankCombined = rank.SentinelCombined

	res, err := h.Handle(context.Background(), RecordActivityCommand{MemberID: 7})
	require.NoError(t, err)
	assert.Equal(t, "🗨 Болтун", res.RankDiff[rank.TrackMessages])
	assert.Equal(t, "🗨 Болтун", repo.members[7].RankMessages)
}

func TestRecordActivity_InvalidMemberID(t *testing.T) {
	h := NewRecordActivityHandler(newFakeMemberRepo(), &fakePublisher{})

	_, err := h.Handle(context.Background(), RecordActivityCommand{MemberID: 0})
	assert.ErrorIs(t, err, member.ErrInvalidID)
}
