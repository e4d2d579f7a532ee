package handler

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// HELP HANDLER
// Handles /help - shows the command reference. Admins additionally see the
// wizard entry point.
// ══════════════════════════════════════════════════════════════════════════════

// HelpHandler handles the /help command.
type HelpHandler struct {
	isAdmin func(telegramID int64) bool
}

// NewHelpHandler creates a new HelpHandler. isAdmin decides whether the
// admin section is appended to the reference.
func NewHelpHandler(isAdmin func(telegramID int64) bool) *HelpHandler {
	return &HelpHandler{isAdmin: isAdmin}
}

// HelpRequest contains the parsed /help command data.
type HelpRequest struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID for sending responses.
	ChatID int64
}

// HelpResponse contains the response to send back.
type HelpResponse struct {
	// Text is the message text (HTML formatted).
	Text string

	// ParseMode is the parse mode (HTML).
	ParseMode string
}

// Handle processes the /help command.
func (h *HelpHandler) Handle(_ context.Context, req HelpRequest) (*HelpResponse, error) {
	text := "ℹ️ <b>Команды бота</b>\n\n" +
		"• /profile — твоя карточка: счётчики, звания, ачивки\n" +
		"• /stats — активность за последние дни\n" +
		"• /achievements — каталог ачивок\n" +
		"• /ranks — таблица званий\n" +
		"• /start — регистрация и меню\n" +
		"• /about — о боте\n" +
		"• /id — твой Telegram ID\n\n" +
		"<i>Сообщения и комментарии в чате считаются автоматически.</i>"

	if h.isAdmin != nil && h.isAdmin(req.TelegramID) {
		text += "\n\n🔧 <b>Для админов</b>\n" +
			"• /admin — мастер: установить книги, выдать ачивку"
	}

	return &HelpResponse{
		Text:      text,
		ParseMode: "HTML",
	}, nil
}
