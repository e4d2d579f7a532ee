// Package rank содержит систему званий сообщества.
package rank

import (
	"github.com/ficben/achievebot/internal/domain/member"
)

// Ranks - три звания участника, по одному на трек.
type Ranks struct {
	Messages string
	Comments string
	Combined string
}

// Diff - подмножество треков, чьё звание изменилось с прошлого пересчёта.
// Пустая карта - валидный и ожидаемый результат.
type Diff map[Track]string

// IsEmpty возвращает true, если ни одно звание не изменилось.
func (d Diff) IsEmpty() bool {
	return len(d) == 0
}

// Compute вычисляет все три звания из текущих счётчиков.
func Compute(messages, comments int) Ranks {
	return Ranks{
		Messages: MessagesRank(messages),
		Comments: CommentsRank(comments),
		Combined: CombinedRank(messages, comments),
	}
}

// Recompute пересчитывает звания участника, применяет их к сущности и
// возвращает только реально изменившиеся треки.
//
// Закешированные звания перезаписываются безусловно, даже без изменений:
// это дёшево, идемпотентно и гарантирует, что хранимое значение никогда
// не разъедется с вычислением.
func Recompute(m *member.Member) Diff {
	fresh := Compute(m.Messages, m.Comments)

	diff := Diff{}
	if fresh.Messages != m.RankMessages {
		diff[TrackMessages] = fresh.Messages
	}
	if fresh.Comments != m.RankComments {
		diff[TrackComments] = fresh.Comments
	}
	if fresh.Combined != m.RankCombined {
		diff[TrackCombined] = fresh.Combined
	}

	m.ApplyRanks(fresh.Messages, fresh.Comments, fresh.Combined)

	return diff
}
