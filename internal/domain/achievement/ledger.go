// Package achievement содержит каталог ачивок, журнал выдачи и правила
// автоматических ачивок.
package achievement

import (
	"context"

	"github.com/ficben/achievebot/internal/domain/member"
)

// Ledger - журнал выданных ачивок: отношение (участник, код).
// Пара существует не более одного раза.
type Ledger interface {
	// Award идемпотентно выдаёт ачивку. Повторная выдача уже имеющейся
	// ачивки - no-op, не ошибка. Результат не сообщает, была ли выдача
	// новой: кому это важно, тот сперва зовёт Has.
	Award(ctx context.Context, id member.ID, code string) error

	// Has проверяет, выдана ли ачивка участнику.
	Has(ctx context.Context, id member.ID, code string) (bool, error)

	// ListByMember возвращает коды всех ачивок участника.
	ListByMember(ctx context.Context, id member.ID) ([]string, error)
}
