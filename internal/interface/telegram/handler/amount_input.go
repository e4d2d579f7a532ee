package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/ficben/achievebot/internal/application/command"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/wizard"
)

// ══════════════════════════════════════════════════════════════════════════════
// AMOUNT INPUT HANDLER
// Handles the free-text step of the books branch: when the operator has a
// session waiting for an amount, the next private message is parsed as the
// book count. Invalid input keeps the session on the same step so the
// operator can just retry.
// ══════════════════════════════════════════════════════════════════════════════

// AmountInputHandler handles text input while the wizard waits for an amount.
type AmountInputHandler struct {
	machine  *wizard.Machine
	store    wizard.SessionStore
	setBooks *command.SetBooksCountHandler
}

// NewAmountInputHandler creates a new AmountInputHandler with dependencies.
func NewAmountInputHandler(
	machine *wizard.Machine,
	store wizard.SessionStore,
	setBooks *command.SetBooksCountHandler,
) *AmountInputHandler {
	return &AmountInputHandler{
		machine:  machine,
		store:    store,
		setBooks: setBooks,
	}
}

// AmountInputRequest contains the text message data.
type AmountInputRequest struct {
	// TelegramID is the sender's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID for sending responses.
	ChatID int64

	// Text is the raw message text.
	Text string
}

// AmountInputResponse contains the response to send back.
type AmountInputResponse struct {
	// Text is the message text (HTML formatted).
	Text string

	// ParseMode is the parse mode (HTML).
	ParseMode string
}

// Handle consumes a text message if the sender's wizard session is waiting
// for an amount. The second return value reports whether the message was
// consumed; false means the caller should treat it as ordinary text.
func (h *AmountInputHandler) Handle(ctx context.Context, req AmountInputRequest) (*AmountInputResponse, bool, error) {
	s, err := h.store.Get(ctx, req.TelegramID)
	if err != nil {
		if errors.Is(err, wizard.ErrNoSession) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if s.Step != wizard.StepSettingAmount {
		return nil, false, nil
	}

	targetID, amount, err := h.machine.SubmitAmount(s, req.TelegramID, req.Text)
	if err != nil {
		if errors.Is(err, wizard.ErrInvalidAmount) {
			return &AmountInputResponse{
				Text:      "⚠️ Нужно неотрицательное целое число. Попробуй ещё раз.",
				ParseMode: "HTML",
			}, true, nil
		}
		if errors.Is(err, wizard.ErrUnauthorized) {
			// Session exists but the operator lost admin rights. Drop it.
			_ = h.store.Delete(ctx, req.TelegramID)
			return nil, false, nil
		}
		return nil, false, err
	}

	result, err := h.setBooks.Handle(ctx, command.SetBooksCountCommand{
		MemberID: targetID.Int64(),
		Count:    amount,
	})
	if err != nil {
		if errors.Is(err, member.ErrNotRegistered) {
			_ = h.store.Delete(ctx, req.TelegramID)
			return &AmountInputResponse{
				Text:      "❌ Участник больше не зарегистрирован. Начни заново: /admin",
				ParseMode: "HTML",
			}, true, nil
		}
		return nil, true, err
	}

	if err := h.store.Delete(ctx, req.TelegramID); err != nil {
		return nil, true, err
	}

	text := fmt.Sprintf(
		"✅ <b>Готово</b>\n\nУчастнику <code>%d</code> установлено книг: <b>%d</b>",
		result.MemberID, result.Count,
	)
	if len(result.Granted) > 0 {
		text += "\n\n✨ Автоматически открыты ачивки:\n"
		for _, code := range result.Granted {
			text += fmt.Sprintf("• <code>%s</code>\n", code)
		}
	}

	return &AmountInputResponse{
		Text:      text,
		ParseMode: "HTML",
	}, true, nil
}
