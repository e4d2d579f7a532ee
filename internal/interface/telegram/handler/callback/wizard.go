// Package callback contains handlers for inline keyboard callbacks.
package callback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ficben/achievebot/internal/application/command"
	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/wizard"
	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// WIZARD CALLBACK HANDLER
// Drives the admin wizard: every button press loads the operator's session,
// applies one state machine transition and saves the session back. The two
// terminal transitions (submit amount, pick achievement) execute the
// corresponding application command and drop the session.
//
// Callback data scheme: "adm:<action>[:<arg>]".
// ══════════════════════════════════════════════════════════════════════════════

// WizardHandler handles "adm:" callbacks.
type WizardHandler struct {
	machine    *wizard.Machine
	store      wizard.SessionStore
	memberRepo member.Repository
	setBooks   *command.SetBooksCountHandler
	grant      *command.GrantAchievementHandler
	keyboards  *presenter.KeyboardBuilder
}

// NewWizardHandler creates a new WizardHandler with dependencies.
func NewWizardHandler(
	machine *wizard.Machine,
	store wizard.SessionStore,
	memberRepo member.Repository,
	setBooks *command.SetBooksCountHandler,
	grant *command.GrantAchievementHandler,
	keyboards *presenter.KeyboardBuilder,
) *WizardHandler {
	return &WizardHandler{
		machine:    machine,
		store:      store,
		memberRepo: memberRepo,
		setBooks:   setBooks,
		grant:      grant,
		keyboards:  keyboards,
	}
}

// WizardRequest contains the parsed callback data.
type WizardRequest struct {
	// TelegramID is the operator's Telegram ID.
	TelegramID int64

	// ChatID is the chat with the wizard message.
	ChatID int64

	// MessageID is the wizard message to edit in place.
	MessageID int

	// Data is the raw callback data ("adm:...").
	Data string
}

// WizardResponse contains the response to apply.
type WizardResponse struct {
	// Text is the new message text (HTML formatted). Empty means the
	// message is left untouched.
	Text string

	// Keyboard is the inline keyboard to attach.
	Keyboard *presenter.InlineKeyboard

	// ParseMode is the parse mode (HTML).
	ParseMode string

	// Alert is shown via answerCallbackQuery instead of editing the
	// message (session expiry, unauthorized press and the like).
	Alert string
}

// Handle processes one wizard callback.
func (h *WizardHandler) Handle(ctx context.Context, req WizardRequest) (*WizardResponse, error) {
	action, arg := splitAction(req.Data)

	switch action {
	case "noop":
		return &WizardResponse{}, nil
	case "books":
		return h.handleStart(ctx, req, wizard.ModeSetBooks)
	case "ach":
		return h.handleStart(ctx, req, wizard.ModeGiveAchievement)
	case "cancel":
		return h.handleCancel(ctx, req)
	}

	// Every remaining action operates on an existing session.
	s, err := h.store.Get(ctx, req.TelegramID)
	if err != nil {
		if errors.Is(err, wizard.ErrNoSession) {
			return h.expired(), nil
		}
		return nil, err
	}

	switch action {
	case "mpage":
		page, _ := strconv.Atoi(arg)
		if err := h.machine.PageMembers(s, req.TelegramID, page); err != nil {
			return h.transitionFailed(err)
		}
		return h.saveAndRenderMembers(ctx, s)

	case "member":
		id, _ := strconv.ParseInt(arg, 10, 64)
		if err := h.machine.SelectMember(s, req.TelegramID, member.ID(id)); err != nil {
			return h.transitionFailed(err)
		}
		if s.Step == wizard.StepSettingAmount {
			if err := h.store.Save(ctx, s); err != nil {
				return nil, err
			}
			return &WizardResponse{
				Text: "📚 <b>Установка количества книг</b>\n\n" +
					"Отправь число сообщением. Ноль тоже допустим.",
				Keyboard:  h.keyboards.AmountKeyboard(),
				ParseMode: "HTML",
			}, nil
		}
		return h.saveAndRenderCategories(ctx, s)

	case "cpage":
		page, _ := strconv.Atoi(arg)
		if err := h.machine.PageCategories(s, req.TelegramID, page); err != nil {
			return h.transitionFailed(err)
		}
		return h.saveAndRenderCategories(ctx, s)

	case "cat":
		index, err := strconv.Atoi(arg)
		if err != nil {
			index = -1
		}
		if err := h.machine.SelectCategory(s, req.TelegramID, index); err != nil {
			return h.transitionFailed(err)
		}
		return h.saveAndRenderAchievements(ctx, s)

	case "apage":
		page, _ := strconv.Atoi(arg)
		if err := h.machine.PageAchievements(s, req.TelegramID, page); err != nil {
			return h.transitionFailed(err)
		}
		return h.saveAndRenderAchievements(ctx, s)

	case "pick":
		return h.handlePick(ctx, req, s, arg)

	case "back":
		return h.handleBack(ctx, req, s, arg)
	}

	return &WizardResponse{Alert: "Неизвестное действие"}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FLOW STEPS
// ─────────────────────────────────────────────────────────────────────────────

func (h *WizardHandler) handleStart(ctx context.Context, req WizardRequest, mode wizard.Mode) (*WizardResponse, error) {
	members, err := h.memberRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	s, err := h.machine.Start(req.TelegramID, mode, members)
	if err != nil {
		return h.transitionFailed(err)
	}

	return h.saveAndRenderMembers(ctx, s)
}

func (h *WizardHandler) handlePick(ctx context.Context, req WizardRequest, s *wizard.Session, code string) (*WizardResponse, error) {
	targetID, picked, err := h.machine.Pick(s, req.TelegramID, code)
	if err != nil {
		return h.transitionFailed(err)
	}

	result, err := h.grant.Handle(ctx, command.GrantAchievementCommand{
		MemberID: targetID.Int64(),
		Code:     picked,
	})
	if err != nil {
		return nil, err
	}

	if err := h.store.Delete(ctx, req.TelegramID); err != nil {
		return nil, err
	}

	return &WizardResponse{
		Text: fmt.Sprintf(
			"✅ <b>Ачивка выдана</b>\n\n%s → участнику <code>%d</code>",
			escapeHTML(result.Title), result.MemberID,
		),
		ParseMode: "HTML",
	}, nil
}

func (h *WizardHandler) handleBack(ctx context.Context, req WizardRequest, s *wizard.Session, target string) (*WizardResponse, error) {
	switch target {
	case "members":
		if err := h.machine.BackToMembers(s, req.TelegramID); err != nil {
			return h.transitionFailed(err)
		}
		return h.saveAndRenderMembers(ctx, s)
	case "cats":
		if err := h.machine.BackToCategories(s, req.TelegramID); err != nil {
			return h.transitionFailed(err)
		}
		return h.saveAndRenderCategories(ctx, s)
	}
	return &WizardResponse{Alert: "Неизвестное действие"}, nil
}

func (h *WizardHandler) handleCancel(ctx context.Context, req WizardRequest) (*WizardResponse, error) {
	if !h.machine.IsAdmin(req.TelegramID) {
		return &WizardResponse{Alert: "⛔ Только для админов"}, nil
	}

	if err := h.store.Delete(ctx, req.TelegramID); err != nil {
		return nil, err
	}

	return &WizardResponse{
		Text:      "❌ Действие отменено.",
		ParseMode: "HTML",
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// RENDERING
// ─────────────────────────────────────────────────────────────────────────────

func (h *WizardHandler) saveAndRenderMembers(ctx context.Context, s *wizard.Session) (*WizardResponse, error) {
	if err := h.store.Save(ctx, s); err != nil {
		return nil, err
	}

	title := "📚 <b>Установка книг</b>"
	if s.Mode == wizard.ModeGiveAchievement {
		title = "🏆 <b>Выдача ачивки</b>"
	}

	info := s.MembersPageInfo()
	text := fmt.Sprintf(
		"%s\n\nВыбери участника (стр. %d из %d):",
		title, info.Page+1, info.Pages(),
	)

	return &WizardResponse{
		Text:      text,
		Keyboard:  h.keyboards.MembersKeyboard(s),
		ParseMode: "HTML",
	}, nil
}

func (h *WizardHandler) saveAndRenderCategories(ctx context.Context, s *wizard.Session) (*WizardResponse, error) {
	if err := h.store.Save(ctx, s); err != nil {
		return nil, err
	}

	info := s.CategoriesPageInfo()
	text := fmt.Sprintf(
		"🏆 <b>Выдача ачивки</b>\n\nВыбери категорию (стр. %d из %d):",
		info.Page+1, info.Pages(),
	)

	return &WizardResponse{
		Text:      text,
		Keyboard:  h.keyboards.CategoriesKeyboard(s),
		ParseMode: "HTML",
	}, nil
}

func (h *WizardHandler) saveAndRenderAchievements(ctx context.Context, s *wizard.Session) (*WizardResponse, error) {
	if err := h.store.Save(ctx, s); err != nil {
		return nil, err
	}

	info := h.machine.AchievementsPageInfo(s)
	text := fmt.Sprintf(
		"🏆 <b>%s</b>\n\nВыбери ачивку (стр. %d из %d):",
		escapeHTML(s.SelectedCategory), info.Page+1, info.Pages(),
	)

	return &WizardResponse{
		Text:      text,
		Keyboard:  h.keyboards.AchievementsKeyboard(h.machine.AchievementsOnPage(s), info),
		ParseMode: "HTML",
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ERROR MAPPING
// ─────────────────────────────────────────────────────────────────────────────

// transitionFailed maps machine errors to user-facing alerts. Unexpected
// errors are passed through to the caller.
func (h *WizardHandler) transitionFailed(err error) (*WizardResponse, error) {
	switch {
	case errors.Is(err, wizard.ErrUnauthorized):
		return &WizardResponse{Alert: "⛔ Только для админов"}, nil
	case errors.Is(err, wizard.ErrWrongStep):
		return &WizardResponse{Alert: "Кнопка устарела. Начни заново: /admin"}, nil
	case errors.Is(err, achievement.ErrCatalogNotLoaded):
		return &WizardResponse{Alert: "Каталог ачивок недоступен"}, nil
	case errors.Is(err, achievement.ErrUnknownCategory),
		errors.Is(err, achievement.ErrUnknownCode):
		return &WizardResponse{Alert: "Такой записи больше нет в каталоге"}, nil
	case errors.Is(err, member.ErrInvalidID):
		return &WizardResponse{Alert: "Некорректный участник"}, nil
	}
	return nil, err
}

func (h *WizardHandler) expired() *WizardResponse {
	return &WizardResponse{Alert: "Сессия мастера истекла. Начни заново: /admin"}
}

// splitAction splits "adm:<action>[:<arg>]" into action and arg.
func splitAction(data string) (action, arg string) {
	data = strings.TrimPrefix(data, "adm:")
	if i := strings.IndexByte(data, ':'); i >= 0 {
		return data[:i], data[i+1:]
	}
	return data, ""
}

// escapeHTML escapes Telegram HTML special characters.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
