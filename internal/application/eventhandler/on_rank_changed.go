// Package eventhandler содержит обработчики доменных событий.
// Обработчики - "реактивная" часть бота: они реагируют на изменения и
// запускают побочные эффекты вроде отправки поздравлений в чат.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ficben/achievebot/internal/domain/rank"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON RANK CHANGED HANDLER
// Отправляет в чат поздравление, когда участник пересёк порог одного или
// нескольких треков. Одна строка на изменившийся трек, ответом на
// сообщение-триггер.
// ═══════════════════════════════════════════════════════════════════════════

// Notifier отправляет текст в чат, опционально ответом на сообщение.
type Notifier interface {
	SendReply(ctx context.Context, chatID int64, replyTo int64, text string) error
}

// Подписи треков в поздравлении.
var trackLabels = map[string]string{
	string(rank.TrackMessages): "🏆 Новое звание за сообщения",
	string(rank.TrackComments): "💬 Новое звание за комментарии",
	string(rank.TrackCombined): "🌟 Новый общий статус",
}

// Порядок строк в поздравлении фиксирован.
var trackOrder = []string{
	string(rank.TrackMessages),
	string(rank.TrackComments),
	string(rank.TrackCombined),
}

// OnRankChangedHandler обрабатывает событие изменения звания.
type OnRankChangedHandler struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewOnRankChangedHandler создаёт обработчик события изменения звания.
func NewOnRankChangedHandler(notifier Notifier, logger *slog.Logger) *OnRankChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnRankChangedHandler{
		notifier: notifier,
		logger:   logger.With("handler", "on_rank_changed"),
	}
}

// Handle обрабатывает событие изменения звания.
// Реализует shared.EventHandler.
func (h *OnRankChangedHandler) Handle(event shared.Event) error {
	rankEvent, ok := event.(shared.RankChangedEvent)
	if !ok {
		h.logger.Warn("received non-RankChangedEvent", "event_type", event.EventType())
		return nil
	}

	text := Congratulation(rankEvent.Changed)
	if text == "" {
		return nil
	}

	h.logger.Info("sending rank congratulation",
		"member_id", rankEvent.MemberID,
		"tracks", len(rankEvent.Changed),
	)

	ctx := context.Background()
	if err := h.notifier.SendReply(ctx, rankEvent.ChatID, rankEvent.ReplyToMessageID, text); err != nil {
		h.logger.Error("failed to send congratulation",
			"member_id", rankEvent.MemberID,
			"error", err,
		)
		return err
	}
	return nil
}

// Congratulation собирает текст поздравления: по строке на каждый
// изменившийся трек, в фиксированном порядке треков.
func Congratulation(changed map[string]string) string {
	lines := make([]string, 0, len(changed))
	for _, track := range trackOrder {
		title, ok := changed[track]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", trackLabels[track], title))
	}
	return strings.Join(lines, "\n")
}
