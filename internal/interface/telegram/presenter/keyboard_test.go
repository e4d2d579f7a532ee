package presenter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/wizard"
)

func memberSession(total int, page int) *wizard.Session {
	s := &wizard.Session{
		OperatorID:  1,
		Step:        wizard.StepChoosingMember,
		Mode:        wizard.ModeSetBooks,
		MembersPage: page,
	}
	for i := 0; i < total; i++ {
		s.Members = append(s.Members, wizard.SnapshotEntry{
			ID:     int64(100 + i),
			Handle: fmt.Sprintf("user%02d", i),
		})
	}
	return s
}

func TestMembersKeyboard_OneMemberPerRow(t *testing.T) {
	kb := NewKeyboardBuilder().MembersKeyboard(memberSession(3, 0))

	// 3 member rows + nav row + cancel row.
	require.Len(t, kb.Rows, 5)
	for i := 0; i < 3; i++ {
		require.Len(t, kb.Rows[i], 1)
		assert.Equal(t, fmt.Sprintf("adm:member:%d", 100+i), kb.Rows[i][0].CallbackData)
		assert.Equal(t, fmt.Sprintf("@user%02d", i), kb.Rows[i][0].Text)
	}
	assert.Equal(t, "adm:cancel", kb.Rows[4][0].CallbackData)
}

func TestMembersKeyboard_FirstPageHasNoPrev(t *testing.T) {
	kb := NewKeyboardBuilder().MembersKeyboard(memberSession(25, 0))

	// 10 members on the page, then the nav row.
	navRow := kb.Rows[10]
	require.Len(t, navRow, 2)
	assert.Equal(t, "· 1/3 ·", navRow[0].Text)
	assert.Equal(t, "adm:noop", navRow[0].CallbackData)
	assert.Equal(t, "adm:mpage:1", navRow[1].CallbackData)
}

func TestMembersKeyboard_MiddlePageHasBothArrows(t *testing.T) {
	kb := NewKeyboardBuilder().MembersKeyboard(memberSession(25, 1))

	navRow := kb.Rows[10]
	require.Len(t, navRow, 3)
	assert.Equal(t, "adm:mpage:0", navRow[0].CallbackData)
	assert.Equal(t, "· 2/3 ·", navRow[1].Text)
	assert.Equal(t, "adm:mpage:2", navRow[2].CallbackData)
}

func TestMembersKeyboard_LastPageHasNoNext(t *testing.T) {
	kb := NewKeyboardBuilder().MembersKeyboard(memberSession(25, 2))

	// 5 members on the last page.
	navRow := kb.Rows[5]
	require.Len(t, navRow, 2)
	assert.Equal(t, "adm:mpage:1", navRow[0].CallbackData)
	assert.Equal(t, "· 3/3 ·", navRow[1].Text)
}

func TestCategoriesKeyboard_ThreePerRowAbsoluteIndices(t *testing.T) {
	s := &wizard.Session{
		OperatorID:     1,
		Step:           wizard.StepChoosingCategory,
		Mode:           wizard.ModeGiveAchievement,
		Categories:     []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		CategoriesPage: 1,
	}

	kb := NewKeyboardBuilder().CategoriesKeyboard(s)

	// Page 1 holds categories 6..7: a single partial row of two buttons,
	// then nav and back/cancel rows.
	require.Len(t, kb.Rows, 3)
	require.Len(t, kb.Rows[0], 2)
	assert.Equal(t, "G", kb.Rows[0][0].Text)
	assert.Equal(t, "adm:cat:6", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "adm:cat:7", kb.Rows[0][1].CallbackData)

	backRow := kb.Rows[2]
	require.Len(t, backRow, 2)
	assert.Equal(t, "adm:back:members", backRow[0].CallbackData)
	assert.Equal(t, "adm:cancel", backRow[1].CallbackData)
}

func TestCategoriesKeyboard_FullPagePacksTwoRows(t *testing.T) {
	s := &wizard.Session{
		OperatorID: 1,
		Step:       wizard.StepChoosingCategory,
		Mode:       wizard.ModeGiveAchievement,
		Categories: []string{"A", "B", "C", "D", "E", "F"},
	}

	kb := NewKeyboardBuilder().CategoriesKeyboard(s)

	// Six categories pack into two rows of three.
	require.Len(t, kb.Rows, 4)
	assert.Len(t, kb.Rows[0], 3)
	assert.Len(t, kb.Rows[1], 3)
	assert.Equal(t, "adm:cat:0", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "adm:cat:5", kb.Rows[1][2].CallbackData)
}

func TestAchievementsKeyboard_PickButtonsAndBack(t *testing.T) {
	defs := []achievement.Definition{
		{Category: "Чтение", Code: "first_chapter", Title: "📖 Первая глава"},
		{Category: "Чтение", Code: "bookworm", Title: "🐛 Книжный червь"},
	}
	info := wizard.PageInfo{Page: 0, PerPage: wizard.AchievementsPerPage, Total: 2}

	kb := NewKeyboardBuilder().AchievementsKeyboard(defs, info)

	require.Len(t, kb.Rows, 4)
	assert.Equal(t, "adm:pick:first_chapter", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "adm:pick:bookworm", kb.Rows[1][0].CallbackData)

	backRow := kb.Rows[3]
	require.Len(t, backRow, 2)
	assert.Equal(t, "adm:back:cats", backRow[0].CallbackData)
	assert.Equal(t, "adm:cancel", backRow[1].CallbackData)
}

func TestAdminMenuKeyboard(t *testing.T) {
	kb := NewKeyboardBuilder().AdminMenuKeyboard()

	require.Len(t, kb.Rows, 2)
	assert.Equal(t, "adm:books", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "adm:ach", kb.Rows[1][0].CallbackData)
}

func TestWelcomeKeyboard_CommandCallbacks(t *testing.T) {
	kb := NewKeyboardBuilder().WelcomeKeyboard()

	require.Len(t, kb.Rows, 2)
	assert.Equal(t, "cmd:profile", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "cmd:activity", kb.Rows[0][1].CallbackData)
	assert.Equal(t, "cmd:achievements", kb.Rows[1][0].CallbackData)
	assert.Equal(t, "cmd:ranks", kb.Rows[1][1].CallbackData)
}
