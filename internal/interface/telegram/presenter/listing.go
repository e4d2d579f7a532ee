package presenter

import (
	"fmt"
	"strings"

	"github.com/ficben/achievebot/internal/application/query"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/rank"
	"github.com/ficben/achievebot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LISTING PRESENTER
// Formats the read-only listings: recent activity, the achievement catalog
// and the static rank threshold tables.
// ══════════════════════════════════════════════════════════════════════════════

// ListingPresenter formats list views for Telegram.
type ListingPresenter struct{}

// NewListingPresenter creates a new ListingPresenter.
func NewListingPresenter() *ListingPresenter {
	return &ListingPresenter{}
}

// ─────────────────────────────────────────────────────────────────────────────
// RECENT ACTIVITY
// ─────────────────────────────────────────────────────────────────────────────

// Activity builds the recent daily activity view, newest day first.
func (p *ListingPresenter) Activity(days []member.DailyActivity) string {
	var sb strings.Builder

	sb.WriteString("📊 <b>Активность за последние дни</b>\n\n")

	if len(days) == 0 {
		sb.WriteString("<i>Пока нет записей. Напиши что-нибудь в чат!</i>")
		return sb.String()
	}

	for _, d := range days {
		sb.WriteString(fmt.Sprintf(
			"%s · ✉️ %d · 💬 %d\n",
			timeutil.FormatRussianDay(d.Day), d.Messages, d.Comments,
		))
	}

	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// ACHIEVEMENT CATALOG
// ─────────────────────────────────────────────────────────────────────────────

// Catalog builds the achievement catalog view grouped by category.
func (p *ListingPresenter) Catalog(categories []query.CatalogCategory) string {
	var sb strings.Builder

	sb.WriteString("🎖 <b>Каталог ачивок</b>\n")

	for _, cat := range categories {
		sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", escapeHTML(cat.Name)))
		for _, d := range cat.Items {
			sb.WriteString(fmt.Sprintf("• %s", escapeHTML(d.DisplayTitle())))
			if d.Description != "" {
				sb.WriteString(fmt.Sprintf(" — <i>%s</i>", escapeHTML(d.Description)))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// CatalogUnavailable builds the message for a missing catalog.
func (p *ListingPresenter) CatalogUnavailable() string {
	return "😔 Каталог ачивок сейчас недоступен. Попробуй позже."
}

// ─────────────────────────────────────────────────────────────────────────────
// RANK TABLES
// ─────────────────────────────────────────────────────────────────────────────

// RankTables builds the static rank threshold listing for all three tracks.
func (p *ListingPresenter) RankTables() string {
	var sb strings.Builder

	sb.WriteString("🏆 <b>Звания сообщества</b>\n\n")

	sb.WriteString("<b>За сообщения:</b>\n")
	for _, t := range rank.MessageTiers {
		sb.WriteString(fmt.Sprintf("• %s — от %d\n", escapeHTML(t.Title), t.Threshold))
	}

	sb.WriteString("\n<b>За комментарии:</b>\n")
	for _, t := range rank.CommentTiers {
		sb.WriteString(fmt.Sprintf("• %s — от %d\n", escapeHTML(t.Title), t.Threshold))
	}

	sb.WriteString("\n<b>Общий статус:</b>\n")
	for _, t := range rank.CombinedTiers {
		sb.WriteString(fmt.Sprintf(
			"• %s — от %d сообщений и %d комментариев\n",
			escapeHTML(t.Title), t.Messages, t.Comments,
		))
	}

	return sb.String()
}
