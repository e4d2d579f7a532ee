// Package achievement содержит каталог ачивок, журнал выдачи и правила
// автоматических ачивок. Чистый доменный слой.
package achievement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ficben/achievebot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// Ошибки оборачивают общие сентинелы из shared для родовых проверок
// через errors.Is.
var (
	// ErrCatalogNotLoaded - каталог ачивок ещё не загружен (или загрузка
	// упала). Показывается пользователю как «список ачивок не загружен»;
	// подсчёт активности от каталога не зависит и продолжает работать.
	ErrCatalogNotLoaded = fmt.Errorf("achievement: catalog not loaded: %w", shared.ErrServiceUnavailable)

	// ErrUnknownCode - код ачивки отсутствует в каталоге.
	ErrUnknownCode = fmt.Errorf("achievement: unknown code: %w", shared.ErrNotFound)

	// ErrUnknownCategory - категория отсутствует в каталоге.
	ErrUnknownCategory = fmt.Errorf("achievement: unknown category: %w", shared.ErrNotFound)
)

// ══════════════════════════════════════════════════════════════════════════════
// DEFINITION & CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// Definition - описание одной ачивки. Неизменяемо после загрузки каталога.
type Definition struct {
	// Category - отображаемая группа (свободный текст).
	Category string

	// Code - стабильный уникальный идентификатор. Записи без кода
	// отбрасываются при загрузке.
	Code string

	// Title - название для показа пользователю.
	Title string

	// Description - описание.
	Description string
}

// DisplayTitle возвращает название или код, если названия нет.
func (d Definition) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Code
}

// DefaultCategory подставляется записям без категории.
const DefaultCategory = "Прочее"

// Catalog - индекс ачивок в памяти: по коду и по категориям.
// Строится один раз на старте процесса и дальше не меняется, поэтому
// безопасен для конкурентного чтения без синхронизации.
type Catalog struct {
	byCode     map[string]Definition
	byCategory map[string][]Definition
	categories []string // в порядке первого появления
}

// NewCatalog строит каталог из списка определений. Записи с пустым кодом
// отбрасываются. Внутри категории ачивки сортируются по названию без
// учёта регистра.
func NewCatalog(defs []Definition) *Catalog {
	c := &Catalog{
		byCode:     make(map[string]Definition),
		byCategory: make(map[string][]Definition),
	}

	for _, d := range defs {
		if d.Code == "" {
			continue
		}
		if d.Category == "" {
			d.Category = DefaultCategory
		}

		if _, seen := c.byCategory[d.Category]; !seen {
			c.categories = append(c.categories, d.Category)
		}
		c.byCode[d.Code] = d
		c.byCategory[d.Category] = append(c.byCategory[d.Category], d)
	}

	for cat := range c.byCategory {
		items := c.byCategory[cat]
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].DisplayTitle()) < strings.ToLower(items[j].DisplayTitle())
		})
	}

	return c
}

// Size возвращает количество ачивок в каталоге.
func (c *Catalog) Size() int {
	return len(c.byCode)
}

// ByCode возвращает определение по коду.
func (c *Catalog) ByCode(code string) (Definition, bool) {
	d, ok := c.byCode[code]
	return d, ok
}

// Categories возвращает список категорий в порядке первого появления.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// ByCategory возвращает ачивки категории, отсортированные по названию.
func (c *Catalog) ByCategory(category string) []Definition {
	items := c.byCategory[category]
	out := make([]Definition, len(items))
	copy(out, items)
	return out
}
