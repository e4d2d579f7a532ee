package handler

import (
	"context"

	"github.com/ficben/achievebot/internal/domain/wizard"
	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLER
// Handles /admin - the wizard entry point. Shows the two wizard branches;
// the flow itself is driven by callbacks and lives in the session store.
// ══════════════════════════════════════════════════════════════════════════════

// AdminHandler handles the /admin command.
type AdminHandler struct {
	machine   *wizard.Machine
	store     wizard.SessionStore
	keyboards *presenter.KeyboardBuilder
}

// NewAdminHandler creates a new AdminHandler with dependencies.
func NewAdminHandler(
	machine *wizard.Machine,
	store wizard.SessionStore,
	keyboards *presenter.KeyboardBuilder,
) *AdminHandler {
	return &AdminHandler{
		machine:   machine,
		store:     store,
		keyboards: keyboards,
	}
}

// AdminRequest contains the parsed /admin command data.
type AdminRequest struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID for sending responses.
	ChatID int64
}

// AdminResponse contains the response to send back.
type AdminResponse struct {
	// Text is the message text (HTML formatted).
	Text string

	// Keyboard is the inline keyboard to attach.
	Keyboard *presenter.InlineKeyboard

	// ParseMode is the parse mode (HTML).
	ParseMode string

	// IsError indicates if this is an error response.
	IsError bool
}

// Handle processes the /admin command.
func (h *AdminHandler) Handle(ctx context.Context, req AdminRequest) (*AdminResponse, error) {
	if !h.machine.IsAdmin(req.TelegramID) {
		return &AdminResponse{
			Text:      "⛔ Эта команда доступна только администраторам.",
			ParseMode: "HTML",
			IsError:   true,
		}, nil
	}

	// A fresh /admin discards any stuck session.
	if err := h.store.Delete(ctx, req.TelegramID); err != nil {
		return nil, err
	}

	return &AdminResponse{
		Text:      "🔧 <b>Панель администратора</b>\n\nВыбери действие:",
		Keyboard:  h.keyboards.AdminMenuKeyboard(),
		ParseMode: "HTML",
	}, nil
}
