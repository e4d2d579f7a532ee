package command

import (
	"context"
	"fmt"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRANT ACHIEVEMENT COMMAND
// Awards a catalog achievement to a member on behalf of an operator. The
// ledger is idempotent, so repeating a grant is harmless and reported the
// same way.
// ══════════════════════════════════════════════════════════════════════════════

// GrantAchievementCommand contains the data to grant an achievement.
type GrantAchievementCommand struct {
	// MemberID is the Telegram user ID of the target member.
	MemberID int64

	// Code is the catalog code of the achievement.
	Code string
}

// Validate validates the command.
func (c GrantAchievementCommand) Validate() error {
	if !member.ID(c.MemberID).IsValid() {
		return fmt.Errorf("grant_achievement: %w", member.ErrInvalidID)
	}
	if c.Code == "" {
		return fmt.Errorf("grant_achievement: empty code: %w", shared.ErrInvalidInput)
	}
	return nil
}

// GrantAchievementResult contains the result of granting an achievement.
type GrantAchievementResult struct {
	// MemberID is the Telegram user ID of the target member.
	MemberID int64

	// Code is the granted achievement code.
	Code string

	// Title is the display title from the catalog, falling back to the
	// code when the catalog has no entry.
	Title string
}

// GrantAchievementHandler handles the GrantAchievementCommand.
type GrantAchievementHandler struct {
	memberRepo member.Repository
	ledger     achievement.Ledger
	catalog    *achievement.Catalog
	publisher  shared.EventPublisher
}

// NewGrantAchievementHandler creates a new GrantAchievementHandler.
func NewGrantAchievementHandler(
	memberRepo member.Repository,
	ledger achievement.Ledger,
	catalog *achievement.Catalog,
	publisher shared.EventPublisher,
) *GrantAchievementHandler {
	return &GrantAchievementHandler{
		memberRepo: memberRepo,
		ledger:     ledger,
		catalog:    catalog,
		publisher:  publisher,
	}
}

// Handle executes the grant achievement command.
func (h *GrantAchievementHandler) Handle(ctx context.Context, cmd GrantAchievementCommand) (*GrantAchievementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := member.ID(cmd.MemberID)

	if _, err := h.memberRepo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("grant_achievement: %w", err)
	}

	title := cmd.Code
	if h.catalog != nil {
		if def, ok := h.catalog.ByCode(cmd.Code); ok {
			title = def.DisplayTitle()
		}
	}

	if err := h.ledger.Award(ctx, id, cmd.Code); err != nil {
		return nil, fmt.Errorf("grant_achievement: %w", err)
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewAchievementAwardedEvent(cmd.MemberID, cmd.Code, "admin"))
	}

	return &GrantAchievementResult{MemberID: cmd.MemberID, Code: cmd.Code, Title: title}, nil
}
