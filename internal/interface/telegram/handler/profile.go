package handler

import (
	"context"
	"errors"

	"github.com/ficben/achievebot/internal/application/query"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLER
// Handles /profile - shows the member card. Viewing the profile also runs
// the automatic achievement evaluation, so a member who crossed a counter
// threshold sees the new achievement right away.
// ══════════════════════════════════════════════════════════════════════════════

// ProfileHandler handles the /profile command.
type ProfileHandler struct {
	profileQuery *query.GetProfileHandler
	card         *presenter.MemberCardPresenter
	keyboards    *presenter.KeyboardBuilder
}

// NewProfileHandler creates a new ProfileHandler with dependencies.
func NewProfileHandler(
	profileQuery *query.GetProfileHandler,
	card *presenter.MemberCardPresenter,
	keyboards *presenter.KeyboardBuilder,
) *ProfileHandler {
	return &ProfileHandler{
		profileQuery: profileQuery,
		card:         card,
		keyboards:    keyboards,
	}
}

// ProfileRequest contains the parsed /profile command data.
type ProfileRequest struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID for sending responses.
	ChatID int64
}

// ProfileResponse contains the response to send back.
type ProfileResponse struct {
	// Text is the message text (HTML formatted).
	Text string

	// Keyboard is the inline keyboard to attach.
	Keyboard *presenter.InlineKeyboard

	// ParseMode is the parse mode (HTML).
	ParseMode string

	// IsError indicates if this is an error response.
	IsError bool
}

// Handle processes the /profile command.
func (h *ProfileHandler) Handle(ctx context.Context, req ProfileRequest) (*ProfileResponse, error) {
	profile, err := h.profileQuery.Handle(ctx, query.GetProfileQuery{MemberID: req.TelegramID})
	if err != nil {
		if errors.Is(err, member.ErrNotRegistered) {
			return &ProfileResponse{
				Text:      h.card.NotRegistered(),
				ParseMode: "HTML",
				IsError:   true,
			}, nil
		}
		return nil, err
	}

	return &ProfileResponse{
		Text:      h.card.Card(profile),
		Keyboard:  h.keyboards.ProfileKeyboard(),
		ParseMode: "HTML",
	}, nil
}
