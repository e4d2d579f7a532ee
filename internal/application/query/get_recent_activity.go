package query

import (
	"context"
	"fmt"

	"github.com/ficben/achievebot/internal/domain/member"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RECENT ACTIVITY QUERY
// Returns the per-day message and comment counters behind /stats.
// ══════════════════════════════════════════════════════════════════════════════

// RecentActivityDays - how many daily rows /stats shows.
const RecentActivityDays = 7

// GetRecentActivityQuery contains the parameters for fetching activity.
type GetRecentActivityQuery struct {
	// MemberID is the Telegram user ID.
	MemberID int64

	// Days overrides the window size; zero means RecentActivityDays.
	Days int
}

// Validate validates the query.
func (q GetRecentActivityQuery) Validate() error {
	if !member.ID(q.MemberID).IsValid() {
		return fmt.Errorf("get_recent_activity: %w", member.ErrInvalidID)
	}
	return nil
}

// GetRecentActivityHandler handles the GetRecentActivityQuery.
type GetRecentActivityHandler struct {
	memberRepo member.Repository
}

// NewGetRecentActivityHandler creates a new GetRecentActivityHandler.
func NewGetRecentActivityHandler(memberRepo member.Repository) *GetRecentActivityHandler {
	return &GetRecentActivityHandler{memberRepo: memberRepo}
}

// Handle executes the get recent activity query. Days without activity are
// absent from the result; the most recent day comes first.
func (h *GetRecentActivityHandler) Handle(ctx context.Context, q GetRecentActivityQuery) ([]member.DailyActivity, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	id := member.ID(q.MemberID)
	if _, err := h.memberRepo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("get_recent_activity: %w", err)
	}

	days := q.Days
	if days <= 0 {
		days = RecentActivityDays
	}

	activity, err := h.memberRepo.GetRecentActivity(ctx, id, days)
	if err != nil {
		return nil, fmt.Errorf("get_recent_activity: %w", err)
	}
	return activity, nil
}
