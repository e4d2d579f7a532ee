// Package achievement содержит каталог ачивок, журнал выдачи и правила
// автоматических ачивок.
package achievement

import (
	"context"

	"github.com/ficben/achievebot/internal/domain/member"
)

// Коды автоматических ачивок. Должны присутствовать в каталоге,
// но выдача работает и без него - каталог нужен только для отображения.
const (
	// CodeFirstChapter - опубликовал хотя бы одну книгу.
	CodeFirstChapter = "first_chapter"

	// CodeCommentMaster - оставил 50+ комментариев.
	CodeCommentMaster = "comment_master"

	// CodeMessageMaster - написал 100+ сообщений.
	CodeMessageMaster = "message_master"
)

// Rule - правило автоматической ачивки: код и предикат над профилем.
type Rule struct {
	Code      string
	Condition func(m *member.Member) bool
}

// DefaultRules возвращает фиксированный упорядоченный набор правил.
// Список только читается после старта и безопасен для конкурентного чтения.
func DefaultRules() []Rule {
	return []Rule{
		{CodeFirstChapter, func(m *member.Member) bool { return m.Books >= 1 }},
		{CodeCommentMaster, func(m *member.Member) bool { return m.Comments >= 50 }},
		{CodeMessageMaster, func(m *member.Member) bool { return m.Messages >= 100 }},
	}
}

// AutoEvaluator прогоняет правила автоматических ачивок по профилю.
//
// Каждый вызов Run оценивает ВСЕ правила, а не только связанные с
// последним событием: идемпотентность Award делает это безопасным и
// дешёвым, поэтому Run можно дёргать хоть на каждый просмотр профиля.
// Отслеживать «порог только что пересечён» не нужно.
type AutoEvaluator struct {
	ledger Ledger
	rules  []Rule
}

// NewAutoEvaluator создаёт эвалюатор с набором правил по умолчанию.
func NewAutoEvaluator(ledger Ledger) *AutoEvaluator {
	return &AutoEvaluator{
		ledger: ledger,
		rules:  DefaultRules(),
	}
}

// NewAutoEvaluatorWithRules создаёт эвалюатор с заданными правилами.
func NewAutoEvaluatorWithRules(ledger Ledger, rules []Rule) *AutoEvaluator {
	return &AutoEvaluator{
		ledger: ledger,
		rules:  rules,
	}
}

// Run оценивает все правила по порядку и выдаёт ачивки, чьи предикаты
// выполняются. Возвращает коды, выданные ВПЕРВЫЕ этим вызовом
// (для поздравлений); уже имевшиеся коды не попадают в результат.
func (e *AutoEvaluator) Run(ctx context.Context, m *member.Member) ([]string, error) {
	var granted []string

	for _, rule := range e.rules {
		if !rule.Condition(m) {
			continue
		}

		held, err := e.ledger.Has(ctx, m.ID, rule.Code)
		if err != nil {
			return granted, err
		}

		if err := e.ledger.Award(ctx, m.ID, rule.Code); err != nil {
			return granted, err
		}

		if !held {
			granted = append(granted, rule.Code)
		}
	}

	return granted, nil
}
