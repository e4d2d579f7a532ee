package command

import (
	"context"
	"fmt"

	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/rank"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ACTIVITY COMMAND
// Records a chat message or a channel-post comment for a member, bumps the
// counters atomically, recomputes the three rank tracks and publishes a
// RankChanged event when any track crossed a threshold.
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivityCommand contains the data to record a unit of activity.
type RecordActivityCommand struct {
	// MemberID is the Telegram user ID of the author.
	MemberID int64

	// Handle is the author's Telegram username, may be empty.
	Handle string

	// IsComment marks the message as a comment under a channel post.
	IsComment bool

	// ChatID is the chat where the message appeared.
	ChatID int64

	// MessageID is the triggering message, used to reply with the
	// congratulation.
	MessageID int64
}

// Validate validates the command.
func (c RecordActivityCommand) Validate() error {
	if !member.ID(c.MemberID).IsValid() {
		return fmt.Errorf("record_activity: %w", member.ErrInvalidID)
	}
	return nil
}

// RecordActivityResult contains the result of recording activity.
type RecordActivityResult struct {
	// Messages is the total message count after the increment.
	Messages int

	// Comments is the total comment count after the increment.
	Comments int

	// RankDiff holds the tracks whose tier changed, with new tier strings.
	// Empty when no threshold was crossed.
	RankDiff rank.Diff
}

// RecordActivityHandler handles the RecordActivityCommand.
type RecordActivityHandler struct {
	memberRepo member.Repository
	publisher  shared.EventPublisher
}

// NewRecordActivityHandler creates a new RecordActivityHandler.
func NewRecordActivityHandler(memberRepo member.Repository, publisher shared.EventPublisher) *RecordActivityHandler {
	return &RecordActivityHandler{memberRepo: memberRepo, publisher: publisher}
}

// Handle executes the record activity command. Unknown authors are
// registered on the fly so activity in the community chat is never lost.
func (h *RecordActivityHandler) Handle(ctx context.Context, cmd RecordActivityCommand) (*RecordActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := member.ID(cmd.MemberID)

	if err := h.memberRepo.Register(ctx, id, member.Handle(cmd.Handle).Normalize()); err != nil {
		return nil, fmt.Errorf("record_activity: %w", err)
	}

	messages, comments, err := h.memberRepo.Increment(ctx, id, cmd.IsComment)
	if err != nil {
		return nil, fmt.Errorf("record_activity: %w", err)
	}

	m, err := h.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("record_activity: %w", err)
	}

	// The freshly computed tiers are stored unconditionally so the row
	// self-heals after a tier table change; the diff only drives the
	// notification.
	diff := rank.Recompute(m)
	if err := h.memberRepo.UpdateRanks(ctx, id, m.RankMessages, m.RankComments, m.RankCombined); err != nil {
		return nil, fmt.Errorf("record_activity: %w", err)
	}

	if !diff.IsEmpty() && h.publisher != nil {
		changed := make(map[string]string, len(diff))
		for track, title := range diff {
			changed[string(track)] = title
		}
		_ = h.publisher.Publish(shared.NewRankChangedEvent(cmd.MemberID, changed, cmd.ChatID, cmd.MessageID))
	}

	return &RecordActivityResult{
		Messages: messages,
		Comments: comments,
		RankDiff: diff,
	}, nil
}
