// Package member содержит доменную модель участника сообщества FicBen.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package member

import (
	"fmt"
	"strings"
	"time"

	"github.com/ficben/achievebot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ID представляет уникальный идентификатор участника (Telegram user id).
type ID int64

// IsValid проверяет, что ID положительный.
func (id ID) IsValid() bool {
	return id > 0
}

// Int64 возвращает числовое представление идентификатора.
func (id ID) Int64() int64 {
	return int64(id)
}

// Handle представляет отображаемый ник участника (username без @).
// Может быть пустым - не у всех пользователей Telegram есть username.
type Handle string

// String возвращает строковое представление ника.
func (h Handle) String() string {
	return string(h)
}

// Display возвращает ник для отображения или заглушку, если ника нет.
func (h Handle) Display() string {
	if h == "" {
		return "—"
	}
	return "@" + string(h)
}

// Normalize приводит ник к каноническому виду: без @, в нижнем регистре.
func (h Handle) Normalize() Handle {
	return Handle(strings.ToLower(strings.TrimPrefix(string(h), "@")))
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// Ошибки оборачивают общие сентинелы из shared, чтобы верхние слои могли
// проверять и конкретную ошибку, и её родовой вид через errors.Is.
var (
	// ErrInvalidID - невалидный идентификатор участника.
	ErrInvalidID = fmt.Errorf("member: invalid id, must be positive: %w", shared.ErrInvalidID)

	// ErrNotRegistered - участник не найден в хранилище.
	// Пользователю это показывается как "сначала зарегистрируйся" (/start).
	ErrNotRegistered = fmt.Errorf("member: not registered: %w", shared.ErrNotFound)

	// ErrNegativeCount - счётчик не может быть отрицательным.
	ErrNegativeCount = fmt.Errorf("member: count cannot be negative: %w", shared.ErrNegativeValue)
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: MEMBER
// ══════════════════════════════════════════════════════════════════════════════

// Member - центральная сущность системы: участник сообщества с его
// счётчиками активности и закешированными званиями.
//
// Инварианты:
//   - Messages и Comments монотонно растут и никогда не уменьшаются.
//   - Books выставляется админом напрямую и не участвует в званиях.
//   - Три строки званий всегда соответствуют текущим счётчикам
//     (пересчитываются при каждом инкременте).
type Member struct {
	// ID - идентификатор участника в Telegram.
	ID ID

	// Handle - отображаемый ник (может меняться, может отсутствовать).
	Handle Handle

	// JoinedAt - время первой регистрации. Выставляется один раз.
	JoinedAt time.Time

	// Messages - общее количество сообщений.
	Messages int

	// Comments - количество комментариев к постам канала.
	// Концептуально подмножество Messages, но хранится независимо.
	Comments int

	// Books - количество опубликованных книг. Выставляется админом.
	Books int

	// RankMessages - закешированное звание по сообщениям.
	RankMessages string

	// RankComments - закешированное звание по комментариям.
	RankComments string

	// RankCombined - закешированное комбинированное звание.
	RankCombined string
}

// New создаёт нового участника с валидацией.
func New(id ID, handle Handle, joinedAt time.Time) (*Member, error) {
	if !id.IsValid() {
		return nil, ErrInvalidID
	}

	return &Member{
		ID:       id,
		Handle:   handle,
		JoinedAt: joinedAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// RecordMessage увеличивает счётчик сообщений (и комментариев, если
// сообщение является комментарием к посту канала).
func (m *Member) RecordMessage(isComment bool) {
	m.Messages++
	if isComment {
		m.Comments++
	}
}

// SetBooks выставляет количество книг напрямую (админский путь).
func (m *Member) SetBooks(count int) error {
	if count < 0 {
		return ErrNegativeCount
	}
	m.Books = count
	return nil
}

// ApplyRanks перезаписывает закешированные звания свежевычисленными
// значениями. Вызывается движком званий после каждого пересчёта.
func (m *Member) ApplyRanks(messages, comments, combined string) {
	m.RankMessages = messages
	m.RankComments = comments
	m.RankCombined = combined
}

// String возвращает строковое представление участника для логирования.
func (m *Member) String() string {
	return fmt.Sprintf(
		"Member{ID: %d, Handle: %s, Messages: %d, Comments: %d, Books: %d}",
		m.ID, m.Handle, m.Messages, m.Comments, m.Books,
	)
}

// Clone создаёт копию участника.
func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}

	clone := *m
	return &clone
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY ACTIVITY
// ══════════════════════════════════════════════════════════════════════════════

// DailyActivity - запись активности участника за один календарный день (UTC).
// Ключ: (ID участника, день). Создаётся при первой активности дня,
// дальше инкрементируется. Записи никогда не удаляются.
type DailyActivity struct {
	MemberID ID

	// Day - календарный день в UTC, усечённый до полуночи.
	Day time.Time

	Messages int
	Comments int
}

// ListEntry - элемент списка участников для админских выборок.
type ListEntry struct {
	ID     ID
	Handle Handle
}

// Label возвращает подпись для кнопки выбора участника.
func (e ListEntry) Label() string {
	if e.Handle != "" {
		return "@" + e.Handle.String()
	}
	return fmt.Sprintf("ID: %d", e.ID)
}
