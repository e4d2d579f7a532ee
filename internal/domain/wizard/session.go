// Package wizard реализует пошаговый админский мастер: конечный автомат
// выбора участника и ачивки/количества книг через кнопки с пагинацией,
// без ввода сырых идентификаторов.
package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STEPS & MODES
// ══════════════════════════════════════════════════════════════════════════════

// Step - текущий шаг мастера (тегированный вариант состояния).
type Step string

const (
	// StepIdle - мастер не запущен.
	StepIdle Step = "idle"

	// StepChoosingMember - оператор листает список участников.
	StepChoosingMember Step = "choosing_member"

	// StepSettingAmount - оператор вводит количество книг текстом.
	StepSettingAmount Step = "setting_amount"

	// StepChoosingCategory - оператор листает категории ачивок.
	StepChoosingCategory Step = "choosing_category"

	// StepChoosingAchievement - оператор листает ачивки категории.
	StepChoosingAchievement Step = "choosing_achievement"
)

// Mode различает две ветки мастера, разделяющие общий под-поток выбора
// участника.
type Mode string

const (
	// ModeSetBooks - установить количество книг.
	ModeSetBooks Mode = "books"

	// ModeGiveAchievement - выдать ачивку.
	ModeGiveAchievement Mode = "ach"
)

// Размеры страниц фиксированы на тип списка.
const (
	// MembersPerPage - участников на страницу.
	MembersPerPage = 10

	// CategoriesPerPage - категорий на страницу.
	CategoriesPerPage = 6

	// CategoriesPerRow - категорий в строке клавиатуры (только отображение).
	CategoriesPerRow = 3

	// AchievementsPerPage - ачивок на страницу.
	AchievementsPerPage = 10
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUnauthorized - оператор не входит в список администраторов.
	// Никакое состояние при этом не меняется.
	ErrUnauthorized = fmt.Errorf("wizard: %w", shared.ErrUnauthorized)

	// ErrWrongStep - переход не разрешён из текущего шага.
	ErrWrongStep = fmt.Errorf("wizard: %w", shared.ErrStateTransition)

	// ErrInvalidAmount - введённое количество книг не является
	// неотрицательным целым. Шаг не меняется - оператора просят повторить.
	ErrInvalidAmount = fmt.Errorf("wizard: amount must be a non-negative integer: %w", shared.ErrInvalidInput)

	// ErrNoSession - для оператора нет активной сессии мастера.
	ErrNoSession = errors.New("wizard: no active session")
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session - состояние мастера одного оператора. Сессии никогда не
// разделяются между операторами. Снапшот списка участников берётся при
// старте, чтобы пагинация была стабильной, даже если список поменяется
// посреди потока. JSON-теги нужны хранилищу сессий.
type Session struct {
	// OperatorID - Telegram id оператора-владельца сессии.
	OperatorID int64 `json:"operator_id"`

	// Step - текущий шаг.
	Step Step `json:"step"`

	// Mode - какая из двух веток запущена.
	Mode Mode `json:"mode"`

	// Members - снапшот списка участников на момент старта.
	Members []SnapshotEntry `json:"members"`

	// MembersPage - нулевая страница списка участников.
	MembersPage int `json:"members_page"`

	// SelectedMember - выбранный участник (0 - ещё не выбран).
	SelectedMember int64 `json:"selected_member"`

	// Categories - снапшот категорий каталога на момент выбора участника.
	Categories []string `json:"categories"`

	// CategoriesPage - страница списка категорий.
	CategoriesPage int `json:"categories_page"`

	// SelectedCategory - выбранная категория.
	SelectedCategory string `json:"selected_category"`

	// AchievementsPage - страница списка ачивок внутри категории.
	AchievementsPage int `json:"achievements_page"`

	// StartedAt - время старта потока.
	StartedAt time.Time `json:"started_at"`
}

// SnapshotEntry - участник в снапшоте сессии.
type SnapshotEntry struct {
	ID     int64  `json:"id"`
	Handle string `json:"handle"`
}

// Label возвращает подпись кнопки выбора участника.
func (e SnapshotEntry) Label() string {
	return member.ListEntry{ID: member.ID(e.ID), Handle: member.Handle(e.Handle)}.Label()
}

// SelectedMemberID возвращает выбранного участника как доменный ID.
func (s *Session) SelectedMemberID() member.ID {
	return member.ID(s.SelectedMember)
}

// reset возвращает сессию в Idle, сбрасывая выборы и курсоры пагинации.
func (s *Session) reset() {
	*s = Session{OperatorID: s.OperatorID, Step: StepIdle}
}

// ══════════════════════════════════════════════════════════════════════════════
// PAGINATION
// ══════════════════════════════════════════════════════════════════════════════

// PageInfo описывает окно пагинации над списком фиксированного размера.
type PageInfo struct {
	Page    int
	PerPage int
	Total   int
}

// HasPrev возвращает true, если доступна предыдущая страница.
func (p PageInfo) HasPrev() bool {
	return p.Page > 0
}

// HasNext возвращает true, если доступна следующая страница.
func (p PageInfo) HasNext() bool {
	return (p.Page+1)*p.PerPage < p.Total
}

// Bounds возвращает границы окна [start, end) с обрезкой по размеру списка.
func (p PageInfo) Bounds() (start, end int) {
	start = p.Page * p.PerPage
	if start > p.Total {
		start = p.Total
	}
	end = start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// Pages возвращает общее количество страниц (минимум 1).
func (p PageInfo) Pages() int {
	if p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// MembersPageInfo возвращает параметры пагинации списка участников.
func (s *Session) MembersPageInfo() PageInfo {
	return PageInfo{Page: s.MembersPage, PerPage: MembersPerPage, Total: len(s.Members)}
}

// CategoriesPageInfo возвращает параметры пагинации списка категорий.
func (s *Session) CategoriesPageInfo() PageInfo {
	return PageInfo{Page: s.CategoriesPage, PerPage: CategoriesPerPage, Total: len(s.Categories)}
}

// MembersOnPage возвращает участников текущей страницы.
func (s *Session) MembersOnPage() []SnapshotEntry {
	start, end := s.MembersPageInfo().Bounds()
	return s.Members[start:end]
}

// CategoriesOnPage возвращает категории текущей страницы.
func (s *Session) CategoriesOnPage() []string {
	start, end := s.CategoriesPageInfo().Bounds()
	return s.Categories[start:end]
}
