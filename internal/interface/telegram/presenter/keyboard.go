// Package presenter formats data for Telegram display.
// Presenters handle the conversion from domain objects to user-friendly
// Telegram messages, keyboards, and other UI elements.
package presenter

import (
	"fmt"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/wizard"
)

// ══════════════════════════════════════════════════════════════════════════════
// INLINE KEYBOARD TYPES
// These types represent Telegram inline keyboards in a library-agnostic way.
// The actual Telegram bot implementation will convert these to the wire format.
// ══════════════════════════════════════════════════════════════════════════════

// InlineKeyboard represents an inline keyboard.
type InlineKeyboard struct {
	Rows [][]InlineButton
}

// InlineButton represents a single inline button.
type InlineButton struct {
	// Text is the button text.
	Text string

	// CallbackData is the callback data (for callback buttons).
	CallbackData string

	// URL is the URL to open (for URL buttons).
	URL string
}

// NewInlineKeyboard creates a new empty inline keyboard.
func NewInlineKeyboard() *InlineKeyboard {
	return &InlineKeyboard{
		Rows: make([][]InlineButton, 0),
	}
}

// AddRow adds a row of buttons.
func (k *InlineKeyboard) AddRow(buttons ...InlineButton) *InlineKeyboard {
	k.Rows = append(k.Rows, buttons)
	return k
}

// CallbackButton creates a callback button.
func CallbackButton(text, callbackData string) InlineButton {
	return InlineButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// URLButton creates a URL button.
func URLButton(text, url string) InlineButton {
	return InlineButton{
		Text: text,
		URL:  url,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYBOARD BUILDER
// Builds keyboards for different use cases.
// ══════════════════════════════════════════════════════════════════════════════

// KeyboardBuilder builds inline keyboards for various handlers.
type KeyboardBuilder struct{}

// NewKeyboardBuilder creates a new KeyboardBuilder.
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{}
}

// ─────────────────────────────────────────────────────────────────────────────
// START / PROFILE KEYBOARDS
// ─────────────────────────────────────────────────────────────────────────────

// WelcomeKeyboard creates keyboard shown after /start.
func (b *KeyboardBuilder) WelcomeKeyboard() *InlineKeyboard {
	return NewInlineKeyboard().
		AddRow(
			CallbackButton("👤 Мой профиль", "cmd:profile"),
			CallbackButton("📊 Активность", "cmd:activity"),
		).
		AddRow(
			CallbackButton("🎖 Ачивки", "cmd:achievements"),
			CallbackButton("🏆 Звания", "cmd:ranks"),
		)
}

// ProfileKeyboard creates keyboard for the profile card (/profile).
func (b *KeyboardBuilder) ProfileKeyboard() *InlineKeyboard {
	return NewInlineKeyboard().
		AddRow(
			CallbackButton("🔄 Обновить", "refresh:profile"),
			CallbackButton("📊 Активность", "cmd:activity"),
		).
		AddRow(
			CallbackButton("🏆 Звания", "cmd:ranks"),
		)
}

// ActivityKeyboard creates keyboard for the activity view.
func (b *KeyboardBuilder) ActivityKeyboard() *InlineKeyboard {
	return NewInlineKeyboard().
		AddRow(
			CallbackButton("🔄 Обновить", "refresh:activity"),
			CallbackButton("👤 Профиль", "cmd:profile"),
		)
}

// ─────────────────────────────────────────────────────────────────────────────
// ADMIN WIZARD KEYBOARDS
// Callback data scheme: "adm:<action>[:<arg>]". The wizard state itself
// lives in the session store; buttons only carry the transition.
// ─────────────────────────────────────────────────────────────────────────────

// AdminMenuKeyboard creates the /admin entry menu.
func (b *KeyboardBuilder) AdminMenuKeyboard() *InlineKeyboard {
	return NewInlineKeyboard().
		AddRow(
			CallbackButton("📚 Установить книги", "adm:books"),
		).
		AddRow(
			CallbackButton("🏆 Выдать ачивку", "adm:ach"),
		)
}

// MembersKeyboard creates the paginated member picker. One member per row,
// navigation at the bottom.
func (b *KeyboardBuilder) MembersKeyboard(s *wizard.Session) *InlineKeyboard {
	kb := NewInlineKeyboard()

	for _, e := range s.MembersOnPage() {
		kb.AddRow(CallbackButton(e.Label(), fmt.Sprintf("adm:member:%d", e.ID)))
	}

	info := s.MembersPageInfo()
	kb.AddRow(b.navRow(info, "adm:mpage")...)
	kb.AddRow(CallbackButton("❌ Отмена", "adm:cancel"))

	return kb
}

// CategoriesKeyboard creates the paginated category picker. Categories are
// packed three per row; selection is by index within the snapshot.
func (b *KeyboardBuilder) CategoriesKeyboard(s *wizard.Session) *InlineKeyboard {
	kb := NewInlineKeyboard()

	info := s.CategoriesPageInfo()
	start, _ := info.Bounds()

	row := make([]InlineButton, 0, wizard.CategoriesPerRow)
	for i, cat := range s.CategoriesOnPage() {
		row = append(row, CallbackButton(cat, fmt.Sprintf("adm:cat:%d", start+i)))
		if len(row) == wizard.CategoriesPerRow {
			kb.AddRow(row...)
			row = make([]InlineButton, 0, wizard.CategoriesPerRow)
		}
	}
	if len(row) > 0 {
		kb.AddRow(row...)
	}

	kb.AddRow(b.navRow(info, "adm:cpage")...)
	kb.AddRow(
		CallbackButton("◀️ К участникам", "adm:back:members"),
		CallbackButton("❌ Отмена", "adm:cancel"),
	)

	return kb
}

// AchievementsKeyboard creates the paginated achievement picker for the
// selected category. One achievement per row.
func (b *KeyboardBuilder) AchievementsKeyboard(defs []achievement.Definition, info wizard.PageInfo) *InlineKeyboard {
	kb := NewInlineKeyboard()

	for _, d := range defs {
		kb.AddRow(CallbackButton(d.DisplayTitle(), "adm:pick:"+d.Code))
	}

	kb.AddRow(b.navRow(info, "adm:apage")...)
	kb.AddRow(
		CallbackButton("◀️ К категориям", "adm:back:cats"),
		CallbackButton("❌ Отмена", "adm:cancel"),
	)

	return kb
}

// AmountKeyboard creates the keyboard shown while waiting for the amount.
func (b *KeyboardBuilder) AmountKeyboard() *InlineKeyboard {
	return NewInlineKeyboard().
		AddRow(
			CallbackButton("❌ Отмена", "adm:cancel"),
		)
}

// navRow builds the prev / page indicator / next navigation row.
func (b *KeyboardBuilder) navRow(info wizard.PageInfo, prefix string) []InlineButton {
	row := make([]InlineButton, 0, 3)

	if info.HasPrev() {
		row = append(row, CallbackButton("◀️", fmt.Sprintf("%s:%d", prefix, info.Page-1)))
	}

	row = append(row, CallbackButton(
		fmt.Sprintf("· %d/%d ·", info.Page+1, info.Pages()),
		"adm:noop",
	))

	if info.HasNext() {
		row = append(row, CallbackButton("▶️", fmt.Sprintf("%s:%d", prefix, info.Page+1)))
	}

	return row
}
