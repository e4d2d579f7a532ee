package handler

import (
	"context"
	"errors"

	"github.com/ficben/achievebot/internal/application/query"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY HANDLER
// Handles /activity - shows the per-day message and comment counts for the
// last week, newest day first.
// ══════════════════════════════════════════════════════════════════════════════

// ActivityHandler handles the /activity command.
type ActivityHandler struct {
	activityQuery *query.GetRecentActivityHandler
	listings      *presenter.ListingPresenter
	keyboards     *presenter.KeyboardBuilder
}

// NewActivityHandler creates a new ActivityHandler with dependencies.
func NewActivityHandler(
	activityQuery *query.GetRecentActivityHandler,
	listings *presenter.ListingPresenter,
	keyboards *presenter.KeyboardBuilder,
) *ActivityHandler {
	return &ActivityHandler{
		activityQuery: activityQuery,
		listings:      listings,
		keyboards:     keyboards,
	}
}

// ActivityRequest contains the parsed /activity command data.
type ActivityRequest struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID for sending responses.
	ChatID int64
}

// ActivityResponse contains the response to send back.
type ActivityResponse struct {
	// Text is the message text (HTML formatted).
	Text string

	// Keyboard is the inline keyboard to attach.
	Keyboard *presenter.InlineKeyboard

	// ParseMode is the parse mode (HTML).
	ParseMode string

	// IsError indicates if this is an error response.
	IsError bool
}

// Handle processes the /activity command.
func (h *ActivityHandler) Handle(ctx context.Context, req ActivityRequest) (*ActivityResponse, error) {
	days, err := h.activityQuery.Handle(ctx, query.GetRecentActivityQuery{MemberID: req.TelegramID})
	if err != nil {
		if errors.Is(err, member.ErrNotRegistered) {
			return &ActivityResponse{
				Text: "❌ <b>Ты ещё не зарегистрирован</b>\n\n" +
					"Напиши что-нибудь в чат или используй /start.",
				ParseMode: "HTML",
				IsError:   true,
			}, nil
		}
		return nil, err
	}

	return &ActivityResponse{
		Text:      h.listings.Activity(days),
		Keyboard:  h.keyboards.ActivityKeyboard(),
		ParseMode: "HTML",
	}, nil
}
