package achievement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/shared"
)

func TestNewCatalog_DropsRecordsWithoutCode(t *testing.T) {
	c := achievement.NewCatalog([]achievement.Definition{
		{Category: "Книги", Code: "first_chapter", Title: "Первая глава"},
		{Category: "Книги", Code: "", Title: "Битая запись"},
		{Category: "Общение", Code: "comment_master", Title: "Мастер комментариев"},
	})

	assert.Equal(t, 2, c.Size())
	_, ok := c.ByCode("first_chapter")
	assert.True(t, ok)
}

func TestNewCatalog_DefaultCategoryForEmpty(t *testing.T) {
	c := achievement.NewCatalog([]achievement.Definition{
		{Code: "mystery", Title: "Загадка"},
	})

	assert.Equal(t, []string{achievement.DefaultCategory}, c.Categories())
	items := c.ByCategory(achievement.DefaultCategory)
	require.Len(t, items, 1)
	assert.Equal(t, "mystery", items[0].Code)
}

func TestCatalog_CategoriesInFirstAppearanceOrder(t *testing.T) {
	c := achievement.NewCatalog([]achievement.Definition{
		{Category: "Книги", Code: "a"},
		{Category: "Общение", Code: "b"},
		{Category: "Книги", Code: "c"},
		{Category: "События", Code: "d"},
	})

	assert.Equal(t, []string{"Книги", "Общение", "События"}, c.Categories())
}

func TestCatalog_ItemsSortedByTitleCaseInsensitive(t *testing.T) {
	c := achievement.NewCatalog([]achievement.Definition{
		{Category: "Книги", Code: "z", Title: "яблоко"},
		{Category: "Книги", Code: "a", Title: "Арбуз"},
		{Category: "Книги", Code: "m", Title: ""}, // без названия - сортируется по коду
	})

	items := c.ByCategory("Книги")
	require.Len(t, items, 3)
	assert.Equal(t, "m", items[0].Code)
	assert.Equal(t, "Арбуз", items[1].Title)
	assert.Equal(t, "яблоко", items[2].Title)
}

func TestCatalog_ByCategoryReturnsCopy(t *testing.T) {
	c := achievement.NewCatalog([]achievement.Definition{
		{Category: "Книги", Code: "a", Title: "А"},
		{Category: "Книги", Code: "b", Title: "Б"},
	})

	items := c.ByCategory("Книги")
	items[0].Code = "mutated"

	fresh := c.ByCategory("Книги")
	assert.Equal(t, "a", fresh[0].Code)
}

func TestErrors_WrapSharedKinds(t *testing.T) {
	assert.ErrorIs(t, achievement.ErrCatalogNotLoaded, shared.ErrServiceUnavailable)
	assert.ErrorIs(t, achievement.ErrUnknownCode, shared.ErrNotFound)
	assert.ErrorIs(t, achievement.ErrUnknownCategory, shared.ErrNotFound)
}

func TestDefinition_DisplayTitle(t *testing.T) {
	assert.Equal(t, "Название", achievement.Definition{Code: "x", Title: "Название"}.DisplayTitle())
	assert.Equal(t, "x", achievement.Definition{Code: "x"}.DisplayTitle())
}
