package handler

import (
	"context"
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// INFO HANDLER
// Handles the small informational commands: /about, /id and /whereami.
// /whereami exists so an admin can read chat IDs straight from Telegram
// when configuring the discussion chat.
// ══════════════════════════════════════════════════════════════════════════════

// InfoHandler handles /about, /id and /whereami.
type InfoHandler struct{}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler() *InfoHandler {
	return &InfoHandler{}
}

// InfoRequest contains the parsed command data.
type InfoRequest struct {
	// Command is the command name without the slash.
	Command string

	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat the command was sent in.
	ChatID int64

	// ChatType is the Telegram chat type (private, group, supergroup, channel).
	ChatType string

	// ChatTitle is the chat title (empty for private chats).
	ChatTitle string

	// ThreadID is the forum topic ID (0 outside forum topics).
	ThreadID int64
}

// InfoResponse contains the response to send back.
type InfoResponse struct {
	// Text is the message text (HTML formatted).
	Text string

	// ParseMode is the parse mode (HTML).
	ParseMode string
}

// Handle processes one informational command.
func (h *InfoHandler) Handle(_ context.Context, req InfoRequest) (*InfoResponse, error) {
	var text string

	switch req.Command {
	case "about":
		text = "🤖 <b>Бот сообщества FicBen Studio</b>\n\n" +
			"Считаю сообщения, комментарии и книги участников, " +
			"выдаю звания и ачивки.\n\n" +
			"Команды: /help"

	case "id":
		text = fmt.Sprintf("🆔 Твой Telegram ID: <code>%d</code>", req.TelegramID)

	case "whereami":
		text = fmt.Sprintf(
			"📍 <b>Этот чат</b>\n\nID: <code>%d</code>\nТип: <code>%s</code>",
			req.ChatID, req.ChatType,
		)
		if req.ChatTitle != "" {
			text += fmt.Sprintf("\nНазвание: %s", escapeHTML(req.ChatTitle))
		}
		if req.ThreadID != 0 {
			text += fmt.Sprintf("\nТопик: <code>%d</code>", req.ThreadID)
		}

	default:
		text = "Неизвестная команда. Список: /help"
	}

	return &InfoResponse{
		Text:      text,
		ParseMode: "HTML",
	}, nil
}

// escapeHTML escapes Telegram HTML special characters.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
