package achievement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/member"
)

// memLedger - журнал в памяти для тестов. Повторяет контракт Ledger:
// выдача идемпотентна, пара (участник, код) существует не более раза.
type memLedger struct {
	awards map[member.ID]map[string]bool
	calls  int
}

func newMemLedger() *memLedger {
	return &memLedger{awards: make(map[member.ID]map[string]bool)}
}

func (l *memLedger) Award(_ context.Context, id member.ID, code string) error {
	l.calls++
	if l.awards[id] == nil {
		l.awards[id] = make(map[string]bool)
	}
	l.awards[id][code] = true
	return nil
}

func (l *memLedger) Has(_ context.Context, id member.ID, code string) (bool, error) {
	return l.awards[id][code], nil
}

func (l *memLedger) ListByMember(_ context.Context, id member.ID) ([]string, error) {
	var codes []string
	for code := range l.awards[id] {
		codes = append(codes, code)
	}
	return codes, nil
}

func TestAutoEvaluator_FreshMemberGetsNothing(t *testing.T) {
	ledger := newMemLedger()
	eval := achievement.NewAutoEvaluator(ledger)

	granted, err := eval.Run(context.Background(), &member.Member{ID: 1})

	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.Zero(t, ledger.calls)
}

func TestAutoEvaluator_GrantsMatchingRules(t *testing.T) {
	tests := []struct {
		name string
		m    member.Member
		want []string
	}{
		{"первая книга", member.Member{ID: 1, Books: 1}, []string{achievement.CodeFirstChapter}},
		{"полсотни комментариев", member.Member{ID: 2, Comments: 50}, []string{achievement.CodeCommentMaster}},
		{"сто сообщений", member.Member{ID: 3, Messages: 100}, []string{achievement.CodeMessageMaster}},
		{
			"всё сразу",
			member.Member{ID: 4, Books: 2, Comments: 80, Messages: 500},
			[]string{achievement.CodeFirstChapter, achievement.CodeCommentMaster, achievement.CodeMessageMaster},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newMemLedger()
			eval := achievement.NewAutoEvaluator(ledger)

			granted, err := eval.Run(context.Background(), &tt.m)

			require.NoError(t, err)
			assert.Equal(t, tt.want, granted)
		})
	}
}

func TestAutoEvaluator_BelowThresholdsGrantNothing(t *testing.T) {
	ledger := newMemLedger()
	eval := achievement.NewAutoEvaluator(ledger)

	m := &member.Member{ID: 1, Books: 0, Comments: 49, Messages: 99}
	granted, err := eval.Run(context.Background(), m)

	require.NoError(t, err)
	assert.Empty(t, granted)
}

// Повторные прогоны сходятся: однажды выданное никогда не отзывается,
// повторный Run не считает ачивку новой.
func TestAutoEvaluator_RepeatedRunsConverge(t *testing.T) {
	ledger := newMemLedger()
	eval := achievement.NewAutoEvaluator(ledger)
	ctx := context.Background()

	m := &member.Member{ID: 1, Messages: 150}

	first, err := eval.Run(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, []string{achievement.CodeMessageMaster}, first)

	for i := 0; i < 5; i++ {
		again, err := eval.Run(ctx, m)
		require.NoError(t, err)
		assert.Empty(t, again)

		held, err := ledger.Has(ctx, m.ID, achievement.CodeMessageMaster)
		require.NoError(t, err)
		assert.True(t, held)
	}
}

func TestAutoEvaluator_LedgerIdempotence(t *testing.T) {
	ledger := newMemLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Award(ctx, 1, "x"))
	require.NoError(t, ledger.Award(ctx, 1, "x"))

	codes, err := ledger.ListByMember(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, codes)
}
