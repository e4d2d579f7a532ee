// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER MEMBER COMMAND
// Registers a community member on /start. Registration is idempotent: a
// repeated /start keeps the existing counters and updates the handle only.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterMemberCommand contains the data to register a member.
type RegisterMemberCommand struct {
	// MemberID is the Telegram user ID.
	MemberID int64

	// Handle is the Telegram username, may be empty.
	Handle string

	// ChatID is the chat where /start was issued.
	ChatID int64
}

// Validate validates the command.
func (c RegisterMemberCommand) Validate() error {
	if !member.ID(c.MemberID).IsValid() {
		return fmt.Errorf("register_member: %w", member.ErrInvalidID)
	}
	return nil
}

// RegisterMemberResult contains the result of registering a member.
type RegisterMemberResult struct {
	// MemberID is the Telegram user ID.
	MemberID int64

	// IsNew indicates whether the member was registered for the first time.
	IsNew bool
}

// RegisterMemberHandler handles the RegisterMemberCommand.
type RegisterMemberHandler struct {
	memberRepo member.Repository
	publisher  shared.EventPublisher
}

// NewRegisterMemberHandler creates a new RegisterMemberHandler.
func NewRegisterMemberHandler(memberRepo member.Repository, publisher shared.EventPublisher) *RegisterMemberHandler {
	return &RegisterMemberHandler{memberRepo: memberRepo, publisher: publisher}
}

// Handle executes the register member command.
func (h *RegisterMemberHandler) Handle(ctx context.Context, cmd RegisterMemberCommand) (*RegisterMemberResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := member.ID(cmd.MemberID)
	handle := member.Handle(cmd.Handle).Normalize()

	isNew := false
	if _, err := h.memberRepo.GetByID(ctx, id); err != nil {
		if !errors.Is(err, member.ErrNotRegistered) {
			return nil, fmt.Errorf("register_member: %w", err)
		}
		isNew = true
	}

	if err := h.memberRepo.Register(ctx, id, handle); err != nil {
		return nil, fmt.Errorf("register_member: %w", err)
	}

	if isNew && h.publisher != nil {
		_ = h.publisher.Publish(shared.NewMemberRegisteredEvent(cmd.MemberID, string(handle), cmd.ChatID))
	}

	return &RegisterMemberResult{MemberID: cmd.MemberID, IsNew: isNew}, nil
}
