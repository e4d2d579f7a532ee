package handler

import (
	"context"
	"errors"

	"github.com/ficben/achievebot/internal/application/query"
	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENTS HANDLER
// Handles /achievements - shows the full achievement catalog grouped by
// category. A missing catalog degrades to a polite message, the rest of
// the bot keeps working.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementsHandler handles the /achievements command.
type AchievementsHandler struct {
	catalogQuery *query.GetCatalogHandler
	listings     *presenter.ListingPresenter
}

// NewAchievementsHandler creates a new AchievementsHandler with dependencies.
func NewAchievementsHandler(
	catalogQuery *query.GetCatalogHandler,
	listings *presenter.ListingPresenter,
) *AchievementsHandler {
	return &AchievementsHandler{
		catalogQuery: catalogQuery,
		listings:     listings,
	}
}

// AchievementsRequest contains the parsed /achievements command data.
type AchievementsRequest struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID for sending responses.
	ChatID int64
}

// AchievementsResponse contains the response to send back.
type AchievementsResponse struct {
	// Text is the message text (HTML formatted).
	Text string

	// ParseMode is the parse mode (HTML).
	ParseMode string

	// IsError indicates if this is an error response.
	IsError bool
}

// Handle processes the /achievements command.
func (h *AchievementsHandler) Handle(ctx context.Context, req AchievementsRequest) (*AchievementsResponse, error) {
	categories, err := h.catalogQuery.Handle(ctx)
	if err != nil {
		if errors.Is(err, achievement.ErrCatalogNotLoaded) {
			return &AchievementsResponse{
				Text:      h.listings.CatalogUnavailable(),
				ParseMode: "HTML",
				IsError:   true,
			}, nil
		}
		return nil, err
	}

	return &AchievementsResponse{
		Text:      h.listings.Catalog(categories),
		ParseMode: "HTML",
	}, nil
}
