package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "achievements.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Категория", "Код", "Название", "Описание"},
		{"Творчество", "first_chapter", "📖 Первая глава", "Опубликована первая книга"},
		{"Творчество", "prolific", "✍️ Плодовитый автор", ""},
		{"", "lone_wolf", "🐺 Одиночка", "Без категории"},
		{"Мусор", "", "строка без кода", ""},
		{},
	})

	catalog, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 3, catalog.Size())

	def, ok := catalog.ByCode("first_chapter")
	require.True(t, ok)
	assert.Equal(t, "📖 Первая глава", def.Title)
	assert.Equal(t, "Творчество", def.Category)

	// Пустая категория получает категорию по умолчанию.
	def, ok = catalog.ByCode("lone_wolf")
	require.True(t, ok)
	assert.Equal(t, "Прочее", def.Category)

	// Строка без кода отброшена.
	_, ok = catalog.ByCode("")
	assert.False(t, ok)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestLoadFile_HeaderOnly(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Категория", "Код", "Название", "Описание"},
	})

	catalog, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, catalog.Size())
}
