package command

import (
	"context"
	"fmt"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET BOOKS COUNT COMMAND
// Overwrites a member's published books counter with the value entered by an
// operator in the admin wizard, then re-evaluates the automatic achievements
// so "first chapter" lands right away instead of on the next profile view.
// ══════════════════════════════════════════════════════════════════════════════

// SetBooksCountCommand contains the data to set the books counter.
type SetBooksCountCommand struct {
	// MemberID is the Telegram user ID of the target member.
	MemberID int64

	// Count is the new absolute value, not a delta.
	Count int
}

// Validate validates the command.
func (c SetBooksCountCommand) Validate() error {
	if !member.ID(c.MemberID).IsValid() {
		return fmt.Errorf("set_books_count: %w", member.ErrInvalidID)
	}
	if c.Count < 0 {
		return fmt.Errorf("set_books_count: %w", member.ErrNegativeCount)
	}
	return nil
}

// SetBooksCountResult contains the result of setting the books counter.
type SetBooksCountResult struct {
	// MemberID is the Telegram user ID of the target member.
	MemberID int64

	// Count is the stored value.
	Count int

	// Granted lists automatic achievement codes awarded by this change.
	Granted []string
}

// SetBooksCountHandler handles the SetBooksCountCommand.
type SetBooksCountHandler struct {
	memberRepo member.Repository
	evaluator  *achievement.AutoEvaluator
	publisher  shared.EventPublisher
}

// NewSetBooksCountHandler creates a new SetBooksCountHandler.
func NewSetBooksCountHandler(
	memberRepo member.Repository,
	evaluator *achievement.AutoEvaluator,
	publisher shared.EventPublisher,
) *SetBooksCountHandler {
	return &SetBooksCountHandler{memberRepo: memberRepo, evaluator: evaluator, publisher: publisher}
}

// Handle executes the set books count command.
func (h *SetBooksCountHandler) Handle(ctx context.Context, cmd SetBooksCountCommand) (*SetBooksCountResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := member.ID(cmd.MemberID)

	m, err := h.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("set_books_count: %w", err)
	}

	if err := h.memberRepo.SetBooks(ctx, id, cmd.Count); err != nil {
		return nil, fmt.Errorf("set_books_count: %w", err)
	}
	_ = m.SetBooks(cmd.Count)

	result := &SetBooksCountResult{MemberID: cmd.MemberID, Count: cmd.Count}

	if h.evaluator != nil {
		granted, err := h.evaluator.Run(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("set_books_count: %w", err)
		}
		result.Granted = granted
		if h.publisher != nil {
			for _, code := range granted {
				_ = h.publisher.Publish(shared.NewAchievementAwardedEvent(cmd.MemberID, code, "auto"))
			}
		}
	}

	return result, nil
}
