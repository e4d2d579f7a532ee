// Package catalog загружает каталог ачивок из XLSX-файла. Файл ведут
// админы сообщества руками, поэтому загрузчик терпим к мусору: пустые
// строки и строки без кода молча пропускаются.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ficben/achievebot/internal/domain/achievement"
)

// Колонки листа: Категория | Код | Название | Описание. Первая строка -
// заголовок.
const (
	colCategory = iota
	colCode
	colTitle
	colDescription
)

// ErrNoSheets возвращается для книги без единого листа.
var ErrNoSheets = errors.New("catalog: workbook has no sheets")

// LoadFile читает каталог из XLSX-файла по пути.
func LoadFile(path string) (*achievement.Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	return load(f)
}

func load(f *excelize.File) (*achievement.Catalog, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	// Каталог живёт на первом листе, остальные игнорируются.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("catalog: read sheet %q: %w", sheets[0], err)
	}

	var defs []achievement.Definition
	for i, row := range rows {
		if i == 0 {
			continue
		}
		defs = append(defs, achievement.Definition{
			Category:    cell(row, colCategory),
			Code:        cell(row, colCode),
			Title:       cell(row, colTitle),
			Description: cell(row, colDescription),
		})
	}

	return achievement.NewCatalog(defs), nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
