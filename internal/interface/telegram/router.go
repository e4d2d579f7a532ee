// Package telegram implements the Telegram bot interface for the FicBen
// community bot.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ficben/achievebot/internal/infrastructure/external/telegram"
	"github.com/ficben/achievebot/internal/interface/telegram/handler"
	"github.com/ficben/achievebot/internal/interface/telegram/handler/callback"
	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables debug logging for routing decisions.
	Debug bool
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT TYPES
// These types carry context information through the routing process.
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext contains context for command handling.
type CommandContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// Username is the user's Telegram username (may be empty).
	Username string

	// ChatID is the chat ID where the command was sent.
	ChatID int64

	// MessageID is the ID of the message containing the command.
	MessageID int

	// Message is the original Telegram message.
	Message *telegram.Message

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// CallbackContext contains context for callback query handling.
type CallbackContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID where the callback originated.
	ChatID int64

	// MessageID is the ID of the message with the inline keyboard.
	MessageID int

	// QueryID is the callback query ID (for answering).
	QueryID string

	// Data is the callback data string.
	Data string

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// TextInputContext contains context for free text handling (wizard amount).
type TextInputContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID.
	ChatID int64

	// Text is the input text.
	Text string

	// Client is the Telegram client.
	Client *telegram.Client
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Routes incoming updates to appropriate handlers.
// ══════════════════════════════════════════════════════════════════════════════

// Router routes Telegram updates to appropriate handlers.
type Router struct {
	config RouterConfig
	logger *slog.Logger

	// Command handlers by command name (without /)
	commandHandlers   map[string]interface{}
	commandHandlersMu sync.RWMutex

	// Callback handlers by prefix
	callbackPrefixHandlers   map[string]interface{}
	callbackPrefixHandlersMu sync.RWMutex

	// Amount input handler (wizard free-text step)
	amountInput *handler.AmountInputHandler
}

// NewRouter creates a new router.
func NewRouter(config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Router{
		config:                 config,
		logger:                 config.Logger,
		commandHandlers:        make(map[string]interface{}),
		callbackPrefixHandlers: make(map[string]interface{}),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION METHODS
// ══════════════════════════════════════════════════════════════════════════════

// RegisterCommand registers a handler for a specific command.
// The command should be without the leading "/".
func (r *Router) RegisterCommand(command string, h interface{}) {
	r.commandHandlersMu.Lock()
	defer r.commandHandlersMu.Unlock()

	r.commandHandlers[command] = h

	if r.config.Debug {
		r.logger.Debug("registered command handler", "command", command)
	}
}

// RegisterCallbackPrefix registers a handler for callbacks matching a prefix.
// The prefix should include the trailing delimiter (e.g., "adm:").
func (r *Router) RegisterCallbackPrefix(prefix string, h interface{}) {
	r.callbackPrefixHandlersMu.Lock()
	defer r.callbackPrefixHandlersMu.Unlock()

	r.callbackPrefixHandlers[prefix] = h

	if r.config.Debug {
		r.logger.Debug("registered callback prefix handler", "prefix", prefix)
	}
}

// RegisterAmountInput registers the wizard amount input handler.
func (r *Router) RegisterAmountInput(h *handler.AmountInputHandler) {
	r.amountInput = h
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING METHODS
// ══════════════════════════════════════════════════════════════════════════════

// HandleCommand routes a command to its handler.
func (r *Router) HandleCommand(ctx context.Context, command string, cmdCtx CommandContext) error {
	r.commandHandlersMu.RLock()
	h, ok := r.commandHandlers[command]
	r.commandHandlersMu.RUnlock()

	if !ok {
		if r.config.Debug {
			r.logger.Debug("no handler for command", "command", command)
		}
		return r.handleUnknownCommand(ctx, cmdCtx)
	}

	return r.executeCommandHandler(ctx, h, command, cmdCtx, false)
}

// HandleCallback routes a callback to its handler.
func (r *Router) HandleCallback(ctx context.Context, data string, cbCtx CallbackContext) error {
	r.callbackPrefixHandlersMu.RLock()
	var matchedPrefix string
	var matchedHandler interface{}
	for prefix, h := range r.callbackPrefixHandlers {
		if strings.HasPrefix(data, prefix) && len(prefix) > len(matchedPrefix) {
			matchedPrefix = prefix
			matchedHandler = h
		}
	}
	r.callbackPrefixHandlersMu.RUnlock()

	if matchedHandler == nil {
		r.logger.Warn("unknown callback", "data", data)
		return nil
	}

	return r.executeCallbackHandler(ctx, matchedHandler, matchedPrefix, cbCtx)
}

// HandleTextInput routes free text to the wizard amount handler. Returns
// true when the text was consumed.
func (r *Router) HandleTextInput(ctx context.Context, inputCtx TextInputContext) (bool, error) {
	if r.amountInput == nil {
		return false, nil
	}

	resp, handled, err := r.amountInput.Handle(ctx, handler.AmountInputRequest{
		TelegramID: inputCtx.TelegramID,
		ChatID:     inputCtx.ChatID,
		Text:       inputCtx.Text,
	})
	if err != nil || !handled {
		return handled, err
	}

	if resp != nil {
		return true, r.sendResponse(ctx, inputCtx.Client, inputCtx.ChatID, resp.Text, resp.ParseMode, nil)
	}
	return true, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND HANDLER ADAPTERS
// Convert specific handler types to the generic routing interface.
// edit selects editing the existing message over sending a new one.
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) executeCommandHandler(ctx context.Context, h interface{}, command string, cmdCtx CommandContext, edit bool) error {
	var (
		text      string
		parseMode string
		keyboard  *presenter.InlineKeyboard
	)

	switch hh := h.(type) {
	case *handler.StartHandler:
		resp, err := hh.Handle(ctx, handler.StartRequest{
			TelegramID: cmdCtx.TelegramID,
			Username:   cmdCtx.Username,
			ChatID:     cmdCtx.ChatID,
		})
		if err != nil {
			return err
		}
		text, parseMode, keyboard = resp.Text, resp.ParseMode, resp.Keyboard

	case *handler.ProfileHandler:
		resp, err := hh.Handle(ctx, handler.ProfileRequest{
			TelegramID: cmdCtx.TelegramID,
			ChatID:     cmdCtx.ChatID,
		})
		if err != nil {
			return err
		}
		text, parseMode, keyboard = resp.Text, resp.ParseMode, resp.Keyboard

	case *handler.ActivityHandler:
		resp, err := hh.Handle(ctx, handler.ActivityRequest{
			TelegramID: cmdCtx.TelegramID,
			ChatID:     cmdCtx.ChatID,
		})
		if err != nil {
			return err
		}
		text, parseMode, keyboard = resp.Text, resp.ParseMode, resp.Keyboard

	case *handler.AchievementsHandler:
		resp, err := hh.Handle(ctx, handler.AchievementsRequest{
			TelegramID: cmdCtx.TelegramID,
			ChatID:     cmdCtx.ChatID,
		})
		if err != nil {
			return err
		}
		text, parseMode = resp.Text, resp.ParseMode

	case *handler.RanksHandler:
		resp, err := hh.Handle(ctx, handler.RanksRequest{
			TelegramID: cmdCtx.TelegramID,
			ChatID:     cmdCtx.ChatID,
		})
		if err != nil {
			return err
		}
		text, parseMode = resp.Text, resp.ParseMode

	case *handler.HelpHandler:
		resp, err := hh.Handle(ctx, handler.HelpRequest{
			TelegramID: cmdCtx.TelegramID,
			ChatID:     cmdCtx.ChatID,
		})
		if err != nil {
			return err
		}
		text, parseMode = resp.Text, resp.ParseMode

	case *handler.InfoHandler:
		req := handler.InfoRequest{
			Command:    command,
			TelegramID: cmdCtx.TelegramID,
			ChatID:     cmdCtx.ChatID,
		}
		if cmdCtx.Message != nil && cmdCtx.Message.Chat != nil {
			req.ChatType = cmdCtx.Message.Chat.Type
			req.ChatTitle = cmdCtx.Message.Chat.Title
			req.ThreadID = cmdCtx.Message.MessageThreadID
		}
		resp, err := hh.Handle(ctx, req)
		if err != nil {
			return err
		}
		text, parseMode = resp.Text, resp.ParseMode

	case *handler.AdminHandler:
		resp, err := hh.Handle(ctx, handler.AdminRequest{
			TelegramID: cmdCtx.TelegramID,
			ChatID:     cmdCtx.ChatID,
		})
		if err != nil {
			return err
		}
		text, parseMode, keyboard = resp.Text, resp.ParseMode, resp.Keyboard

	default:
		r.logger.Warn("unknown handler type", "command", command, "type", fmt.Sprintf("%T", h))
		return r.handleUnknownCommand(ctx, cmdCtx)
	}

	if edit {
		return r.editResponse(ctx, cmdCtx.Client, cmdCtx.ChatID, cmdCtx.MessageID, text, parseMode, keyboard)
	}
	return r.sendResponse(ctx, cmdCtx.Client, cmdCtx.ChatID, text, parseMode, keyboard)
}

// ══════════════════════════════════════════════════════════════════════════════
// CALLBACK HANDLER ADAPTERS
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) executeCallbackHandler(ctx context.Context, h interface{}, prefix string, cbCtx CallbackContext) error {
	switch hh := h.(type) {
	case *callback.WizardHandler:
		return r.handleWizardCallback(ctx, hh, cbCtx)
	case func(ctx context.Context, cbCtx CallbackContext) error:
		return hh(ctx, cbCtx)
	default:
		r.logger.Warn("unknown callback handler type", "prefix", prefix, "type", fmt.Sprintf("%T", h))
		return nil
	}
}

// handleWizardCallback runs one wizard transition and applies the outcome:
// alerts go through answerCallbackQuery, everything else edits the wizard
// message in place.
func (r *Router) handleWizardCallback(ctx context.Context, h *callback.WizardHandler, cbCtx CallbackContext) error {
	resp, err := h.Handle(ctx, callback.WizardRequest{
		TelegramID: cbCtx.TelegramID,
		ChatID:     cbCtx.ChatID,
		MessageID:  cbCtx.MessageID,
		Data:       cbCtx.Data,
	})
	if err != nil {
		return err
	}

	if resp.Alert != "" {
		return cbCtx.Client.AnswerCallbackQuery(ctx, cbCtx.QueryID, resp.Alert, true)
	}

	if resp.Text == "" {
		return nil
	}

	return r.editResponse(ctx, cbCtx.Client, cbCtx.ChatID, cbCtx.MessageID, resp.Text, resp.ParseMode, resp.Keyboard)
}

// CreateCommandCallbackHandler creates a handler for "cmd:" callbacks.
// These trigger commands from menu buttons (e.g., "cmd:profile").
func (r *Router) CreateCommandCallbackHandler() func(ctx context.Context, cbCtx CallbackContext) error {
	return r.commandCallback(false)
}

// CreateRefreshCallbackHandler creates a handler for "refresh:" callbacks.
// Same as "cmd:" but edits the existing message instead of sending new.
func (r *Router) CreateRefreshCallbackHandler() func(ctx context.Context, cbCtx CallbackContext) error {
	return r.commandCallback(true)
}

func (r *Router) commandCallback(edit bool) func(ctx context.Context, cbCtx CallbackContext) error {
	return func(ctx context.Context, cbCtx CallbackContext) error {
		parts := strings.SplitN(cbCtx.Data, ":", 2)
		if len(parts) < 2 {
			return nil
		}

		command := parts[1]

		r.commandHandlersMu.RLock()
		h, ok := r.commandHandlers[command]
		r.commandHandlersMu.RUnlock()
		if !ok {
			return nil
		}

		return r.executeCommandHandler(ctx, h, command, CommandContext{
			TelegramID: cbCtx.TelegramID,
			ChatID:     cbCtx.ChatID,
			MessageID:  cbCtx.MessageID,
			Client:     cbCtx.Client,
		}, edit)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DEFAULT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleUnknownCommand handles commands that don't have a registered handler.
func (r *Router) handleUnknownCommand(ctx context.Context, cmdCtx CommandContext) error {
	text := "❓ <b>Неизвестная команда</b>\n\n" +
		"Доступные команды:\n" +
		"• /profile — твоя карточка\n" +
		"• /activity — активность за неделю\n" +
		"• /achievements — каталог ачивок\n" +
		"• /ranks — таблица званий\n" +
		"• /help — справка"

	_, err := cmdCtx.Client.SendHTML(ctx, cmdCtx.ChatID, text)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// sendResponse sends a new message with optional inline keyboard.
func (r *Router) sendResponse(
	ctx context.Context,
	client *telegram.Client,
	chatID int64,
	text, parseMode string,
	keyboard *presenter.InlineKeyboard,
) error {
	params := telegram.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	}

	if keyboard != nil {
		params.ReplyMarkup = convertKeyboard(keyboard)
	}

	_, err := client.SendMessage(ctx, params)
	return err
}

// editResponse edits an existing message with optional inline keyboard.
func (r *Router) editResponse(
	ctx context.Context,
	client *telegram.Client,
	chatID int64,
	messageID int,
	text, parseMode string,
	keyboard *presenter.InlineKeyboard,
) error {
	var kb *telegram.InlineKeyboardMarkup
	if keyboard != nil {
		kb = convertKeyboard(keyboard)
	}

	_, err := client.EditMessageText(ctx, chatID, int64(messageID), text, parseMode, kb)
	return err
}

// convertKeyboard converts presenter.InlineKeyboard to the wire format.
func convertKeyboard(kb *presenter.InlineKeyboard) *telegram.InlineKeyboardMarkup {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}

	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: make([][]telegram.InlineKeyboardButton, len(kb.Rows)),
	}

	for i, row := range kb.Rows {
		markup.InlineKeyboard[i] = make([]telegram.InlineKeyboardButton, len(row))
		for j, btn := range row {
			markup.InlineKeyboard[i][j] = telegram.InlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.CallbackData,
				URL:          btn.URL,
			}
		}
	}

	return markup
}
