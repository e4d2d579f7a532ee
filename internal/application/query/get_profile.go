// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/rank"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// Assembles the /profile card: counters, the three rank tiers, the earned
// achievement titles and the next-tier progress hints. The automatic
// achievement rules are re-evaluated on every view, so a threshold crossed
// while the bot was down is caught up here.
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileQuery contains the parameters for fetching a profile.
type GetProfileQuery struct {
	// MemberID is the Telegram user ID.
	MemberID int64
}

// Validate validates the query.
func (q GetProfileQuery) Validate() error {
	if !member.ID(q.MemberID).IsValid() {
		return fmt.Errorf("get_profile: %w", member.ErrInvalidID)
	}
	return nil
}

// Profile is the assembled profile view.
type Profile struct {
	// Member holds the counters and stored rank tiers.
	Member *member.Member

	// Achievements holds display titles of earned achievements, catalog
	// order; codes missing from the catalog fall back to the raw code.
	Achievements []string

	// NewlyGranted lists automatic achievement codes granted by this view.
	NewlyGranted []string

	// Progress is the next-tier hint text, empty when all tracks are at
	// the top tier.
	Progress string
}

// GetProfileHandler handles the GetProfileQuery.
type GetProfileHandler struct {
	memberRepo member.Repository
	ledger     achievement.Ledger
	catalog    *achievement.Catalog
	evaluator  *achievement.AutoEvaluator
	publisher  shared.EventPublisher
}

// NewGetProfileHandler creates a new GetProfileHandler.
func NewGetProfileHandler(
	memberRepo member.Repository,
	ledger achievement.Ledger,
	catalog *achievement.Catalog,
	evaluator *achievement.AutoEvaluator,
	publisher shared.EventPublisher,
) *GetProfileHandler {
	return &GetProfileHandler{
		memberRepo: memberRepo,
		ledger:     ledger,
		catalog:    catalog,
		evaluator:  evaluator,
		publisher:  publisher,
	}
}

// Handle executes the get profile query.
func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (*Profile, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	m, err := h.memberRepo.GetByID(ctx, member.ID(q.MemberID))
	if err != nil {
		return nil, fmt.Errorf("get_profile: %w", err)
	}

	profile := &Profile{
		Member:   m,
		Progress: rank.NextProgress(m.Messages, m.Comments),
	}

	if h.evaluator != nil {
		granted, err := h.evaluator.Run(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("get_profile: %w", err)
		}
		profile.NewlyGranted = granted
		if h.publisher != nil {
			for _, code := range granted {
				_ = h.publisher.Publish(shared.NewAchievementAwardedEvent(q.MemberID, code, "auto"))
			}
		}
	}

	codes, err := h.ledger.ListByMember(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("get_profile: %w", err)
	}
	profile.Achievements = h.resolveTitles(codes)

	return profile, nil
}

// resolveTitles maps ledger codes to catalog display titles, keeping the
// ledger order and falling back to the raw code.
func (h *GetProfileHandler) resolveTitles(codes []string) []string {
	titles := make([]string, 0, len(codes))
	for _, code := range codes {
		if h.catalog != nil {
			if def, ok := h.catalog.ByCode(code); ok {
				titles = append(titles, def.DisplayTitle())
				continue
			}
		}
		titles = append(titles, code)
	}
	return titles
}
