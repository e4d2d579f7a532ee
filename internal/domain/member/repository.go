// Package member содержит доменную модель участника сообщества FicBen.
package member

import (
	"context"
	"time"
)

// Repository определяет контракт хранилища участников.
// Реализуется инфраструктурным слоем; домен не знает о механизме хранения.
type Repository interface {
	// Register регистрирует участника, если он ещё не зарегистрирован.
	// Повторная регистрация - no-op: ник и дата присоединения не трогаются.
	Register(ctx context.Context, id ID, handle Handle) error

	// GetByID возвращает участника по идентификатору.
	// Возвращает ErrNotRegistered, если участника нет.
	GetByID(ctx context.Context, id ID) (*Member, error)

	// GetAll возвращает всех участников (id, ник), отсортированных по нику.
	// Используется админским мастером для снапшота списка.
	GetAll(ctx context.Context) ([]ListEntry, error)

	// Increment атомарно увеличивает счётчик сообщений на 1 (и комментариев,
	// если isComment) и инкрементирует сегодняшнюю запись дневной активности.
	// Возвращает обновлённые счётчики. Участник должен существовать.
	Increment(ctx context.Context, id ID, isComment bool) (messages, comments int, err error)

	// SetBooks перезаписывает счётчик книг напрямую.
	SetBooks(ctx context.Context, id ID, count int) error

	// UpdateRanks перезаписывает три закешированных звания.
	UpdateRanks(ctx context.Context, id ID, messages, comments, combined string) error

	// GetRecentActivity возвращает последние дневные записи активности,
	// от новых к старым, не более limit штук.
	GetRecentActivity(ctx context.Context, id ID, limit int) ([]DailyActivity, error)
}

// Clock отдаёт текущее время. Нужен, чтобы тесты могли управлять «сегодня»
// при записи дневной активности.
type Clock interface {
	Now() time.Time
}

// ClockFunc адаптирует функцию к интерфейсу Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock возвращает часы на основе time.Now.
func SystemClock() Clock {
	return ClockFunc(time.Now)
}
