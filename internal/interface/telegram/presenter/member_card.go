package presenter

import (
	"fmt"
	"strings"

	"github.com/ficben/achievebot/internal/application/query"
	"github.com/ficben/achievebot/internal/domain/member"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMBER CARD PRESENTER
// Formats the profile card: counters, the three stored rank tiers, earned
// achievements and the next-tier progress hint.
// ══════════════════════════════════════════════════════════════════════════════

// MemberCardPresenter formats member profiles for Telegram.
type MemberCardPresenter struct{}

// NewMemberCardPresenter creates a new MemberCardPresenter.
func NewMemberCardPresenter() *MemberCardPresenter {
	return &MemberCardPresenter{}
}

// Card builds the HTML profile card from an assembled profile view.
func (p *MemberCardPresenter) Card(profile *query.Profile) string {
	m := profile.Member

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("👤 <b>Профиль %s</b>\n\n", escapeHTML(displayName(m))))

	sb.WriteString(fmt.Sprintf("🏆 Звание: <b>%s</b>\n", escapeHTML(m.RankMessages)))
	sb.WriteString(fmt.Sprintf("💬 За комментарии: <b>%s</b>\n", escapeHTML(m.RankComments)))
	sb.WriteString(fmt.Sprintf("🌟 Статус: <b>%s</b>\n\n", escapeHTML(m.RankCombined)))

	sb.WriteString(fmt.Sprintf("✉️ Сообщений: <b>%d</b>\n", m.Messages))
	sb.WriteString(fmt.Sprintf("💬 Комментариев: <b>%d</b>\n", m.Comments))
	sb.WriteString(fmt.Sprintf("📚 Книг: <b>%d</b>\n", m.Books))

	if len(profile.Achievements) > 0 {
		sb.WriteString("\n🎖 <b>Ачивки:</b>\n")
		for _, title := range profile.Achievements {
			sb.WriteString(fmt.Sprintf("• %s\n", escapeHTML(title)))
		}
	}

	if len(profile.NewlyGranted) > 0 {
		sb.WriteString("\n✨ <i>Новые ачивки только что открыты!</i>\n")
	}

	if profile.Progress != "" {
		sb.WriteString(fmt.Sprintf("\n📈 <i>%s</i>", escapeHTML(profile.Progress)))
	}

	return sb.String()
}

// NotRegistered builds the message for a member without a profile.
func (p *MemberCardPresenter) NotRegistered() string {
	return "❌ <b>Ты ещё не зарегистрирован</b>\n\n" +
		"Напиши что-нибудь в чат или используй /start."
}

func displayName(m *member.Member) string {
	if m.Handle != "" {
		return "@" + m.Handle.String()
	}
	return fmt.Sprintf("ID %d", m.ID)
}

// escapeHTML escapes Telegram HTML special characters.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
