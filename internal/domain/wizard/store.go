package wizard

import "context"

// SessionStore хранит сессии мастера по оператору. Реализация отвечает за
// сериализацию и время жизни брошенных сессий.
type SessionStore interface {
	// Get возвращает сессию оператора. Отсутствие сессии - ErrNoSession.
	Get(ctx context.Context, operatorID int64) (*Session, error)

	// Save сохраняет сессию, перезаписывая прежнюю.
	Save(ctx context.Context, session *Session) error

	// Delete удаляет сессию оператора. Отсутствие сессии не является
	// ошибкой.
	Delete(ctx context.Context, operatorID int64) error
}
