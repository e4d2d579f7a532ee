// Package handler contains Telegram command handlers.
package handler

import (
	"context"

	"github.com/ficben/achievebot/internal/application/command"
	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// START HANDLER
// Handles /start - registers the member and shows the welcome message.
// Registration is idempotent: a returning member just gets the menu again.
// ══════════════════════════════════════════════════════════════════════════════

// StartHandler handles the /start command.
type StartHandler struct {
	registerCmd *command.RegisterMemberHandler
	keyboards   *presenter.KeyboardBuilder
}

// NewStartHandler creates a new StartHandler with dependencies.
func NewStartHandler(
	registerCmd *command.RegisterMemberHandler,
	keyboards *presenter.KeyboardBuilder,
) *StartHandler {
	return &StartHandler{
		registerCmd: registerCmd,
		keyboards:   keyboards,
	}
}

// StartRequest contains the parsed /start command data.
type StartRequest struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// Username is the Telegram username (may be empty).
	Username string

	// ChatID is the chat ID for sending responses.
	ChatID int64
}

// StartResponse contains the response to send back.
type StartResponse struct {
	// Text is the message text (HTML formatted).
	Text string

	// Keyboard is the inline keyboard to attach.
	Keyboard *presenter.InlineKeyboard

	// ParseMode is the parse mode (HTML).
	ParseMode string
}

// Handle processes the /start command.
func (h *StartHandler) Handle(ctx context.Context, req StartRequest) (*StartResponse, error) {
	result, err := h.registerCmd.Handle(ctx, command.RegisterMemberCommand{
		MemberID: req.TelegramID,
		Handle:   req.Username,
		ChatID:   req.ChatID,
	})
	if err != nil {
		return nil, err
	}

	var text string
	if result.IsNew {
		text = "👋 <b>Добро пожаловать в сообщество FicBen!</b>\n\n" +
			"Я считаю твои сообщения и комментарии, выдаю звания за активность " +
			"и храню твои ачивки.\n\n" +
			"Просто общайся в чате — остальное я сделаю сам."
	} else {
		text = "👋 <b>С возвращением!</b>\n\n" +
			"Твой прогресс на месте. Выбирай, что посмотреть:"
	}

	return &StartResponse{
		Text:      text,
		Keyboard:  h.keyboards.WelcomeKeyboard(),
		ParseMode: "HTML",
	}, nil
}
