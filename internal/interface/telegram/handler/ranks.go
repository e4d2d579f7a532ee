package handler

import (
	"context"

	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKS HANDLER
// Handles /ranks - shows the static threshold tables for all three tracks.
// ══════════════════════════════════════════════════════════════════════════════

// RanksHandler handles the /ranks command.
type RanksHandler struct {
	listings *presenter.ListingPresenter
}

// NewRanksHandler creates a new RanksHandler.
func NewRanksHandler(listings *presenter.ListingPresenter) *RanksHandler {
	return &RanksHandler{listings: listings}
}

// RanksRequest contains the parsed /ranks command data.
type RanksRequest struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID for sending responses.
	ChatID int64
}

// RanksResponse contains the response to send back.
type RanksResponse struct {
	// Text is the message text (HTML formatted).
	Text string

	// ParseMode is the parse mode (HTML).
	ParseMode string
}

// Handle processes the /ranks command.
func (h *RanksHandler) Handle(_ context.Context, _ RanksRequest) (*RanksResponse, error) {
	return &RanksResponse{
		Text:      h.listings.RankTables(),
		ParseMode: "HTML",
	}, nil
}
