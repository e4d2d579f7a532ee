// Package rank содержит систему званий сообщества: статические таблицы
// порогов по трём независимым трекам и движок пересчёта.
// Чистый доменный слой без внешних зависимостей.
package rank

// Track - один из трёх независимых треков прогрессии.
type Track string

const (
	// TrackMessages - звание за общее количество сообщений.
	TrackMessages Track = "messages"

	// TrackComments - звание за комментарии к постам канала.
	TrackComments Track = "comments"

	// TrackCombined - комбинированное звание (сообщения И комментарии).
	TrackCombined Track = "combined"
)

// Сентинелы «звания ещё нет» различаются между треками. Это наблюдаемое
// поведение, на которое завязаны профили участников - не унифицировать.
const (
	// SentinelMessages - стартовое звание трека сообщений.
	SentinelMessages = "🐣 Новичок"

	// SentinelComments - отсутствие звания на треке комментариев.
	SentinelComments = "Без звания"

	// SentinelCombined - прочерк на комбинированном треке.
	SentinelCombined = "—"
)

// Tier - ступень звания: минимальный порог и название.
type Tier struct {
	Threshold int
	Title     string
}

// CombinedTier - ступень комбинированного звания: оба порога одновременно.
type CombinedTier struct {
	Messages int
	Comments int
	Title    string
}

// MessageTiers - пороги трека сообщений, по возрастанию.
// Оценка идёт от высшей ступени вниз, первая подошедшая выигрывает.
var MessageTiers = []Tier{
	{100, "🗨 Болтун"},
	{300, "📣 Голос канала"},
	{1000, "🔥 Легенда чата"},
	{3000, "🌪 Стихийное бедствие"},
}

// CommentTiers - пороги трека комментариев, по возрастанию.
var CommentTiers = []Tier{
	{5, "💡 Рядовой комментатор"},
	{15, "🧐 Младший комментатор"},
	{30, "🎯 Комментатор"},
	{100, "👨‍🏫 Старший комментатор"},
	{300, "🧠 Капитан-комментатор"},
	{400, "🎖 Майор-комментатор"},
	{500, "🎖 Полковник-комментатор"},
	{1000, "🫅 Верховный комментатор"},
}

// CombinedTiers - пороги комбинированного трека, по возрастанию.
var CombinedTiers = []CombinedTier{
	{300, 50, "🌟 Активист"},
	{2000, 1000, "🛡 Ветеран"},
	{5000, 2000, "🧭 Бог FicBen"},
}

// MessagesRank возвращает звание трека сообщений для счётчика count.
func MessagesRank(count int) string {
	for i := len(MessageTiers) - 1; i >= 0; i-- {
		if count >= MessageTiers[i].Threshold {
			return MessageTiers[i].Title
		}
	}
	return SentinelMessages
}

// CommentsRank возвращает звание трека комментариев для счётчика count.
func CommentsRank(count int) string {
	for i := len(CommentTiers) - 1; i >= 0; i-- {
		if count >= CommentTiers[i].Threshold {
			return CommentTiers[i].Title
		}
	}
	return SentinelComments
}

// CombinedRank возвращает комбинированное звание: оба порога должны
// выполняться одновременно.
func CombinedRank(messages, comments int) string {
	for i := len(CombinedTiers) - 1; i >= 0; i-- {
		t := CombinedTiers[i]
		if messages >= t.Messages && comments >= t.Comments {
			return t.Title
		}
	}
	return SentinelCombined
}
