// Package telegram implements the Telegram bot interface for the FicBen
// community bot. This package is the entry point for all Telegram
// interactions: counting group activity, serving commands and driving the
// admin wizard.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ficben/achievebot/internal/application/command"
	"github.com/ficben/achievebot/internal/application/query"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/wizard"
	"github.com/ficben/achievebot/internal/infrastructure/external/telegram"
	"github.com/ficben/achievebot/internal/interface/telegram/handler"
	"github.com/ficben/achievebot/internal/interface/telegram/handler/callback"
	"github.com/ficben/achievebot/internal/interface/telegram/middleware"
	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the Telegram bot.
type BotConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// Mode is the update receiving mode: "polling" or "webhook".
	Mode string

	// WebhookURL is the URL for webhook mode (required if Mode is "webhook").
	WebhookURL string

	// DiscussionChatID is the linked discussion group of the channel.
	// Zero means replies to forwarded posts count as comments in any chat.
	DiscussionChatID int64

	// AdminIDs is the operator allow-list for /admin and the wizard.
	AdminIDs []int64

	// Debug enables debug logging.
	Debug bool

	// Logger for structured logging.
	Logger *slog.Logger

	// AllowedUpdates specifies which update types to receive.
	AllowedUpdates []string

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int

	// GracefulShutdownTimeout is the timeout for graceful shutdown.
	GracefulShutdownTimeout time.Duration
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig(token string) BotConfig {
	return BotConfig{
		Token:                   token,
		Mode:                    "polling",
		Debug:                   false,
		Logger:                  slog.Default(),
		AllowedUpdates:          []string{"message", "callback_query"},
		MaxConcurrentUpdates:    100,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT DEPENDENCIES
// Aggregates all dependencies needed by handlers.
// ══════════════════════════════════════════════════════════════════════════════

// BotDependencies contains all dependencies for the bot handlers.
type BotDependencies struct {
	// Repositories
	MemberRepo member.Repository

	// Wizard
	Machine      *wizard.Machine
	SessionStore wizard.SessionStore

	// Commands
	RegisterCmd       *command.RegisterMemberHandler
	RecordActivityCmd *command.RecordActivityHandler
	SetBooksCmd       *command.SetBooksCountHandler
	GrantCmd          *command.GrantAchievementHandler

	// Queries
	ProfileQuery  *query.GetProfileHandler
	ActivityQuery *query.GetRecentActivityHandler
	CatalogQuery  *query.GetCatalogHandler
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// Main bot structure that orchestrates Telegram interactions.
// ══════════════════════════════════════════════════════════════════════════════

// Bot is the main Telegram bot controller.
type Bot struct {
	config BotConfig
	client *telegram.Client
	router *Router
	logger *slog.Logger

	recordActivity *command.RecordActivityHandler

	// Middleware chain
	rateLimiter *middleware.RateLimiter
	recovery    *middleware.RecoveryMiddleware

	// Lifecycle management
	running   bool
	runningMu sync.RWMutex
	updateSem chan struct{}
	wg        sync.WaitGroup
}

// NewBot creates a new Telegram bot with all dependencies.
func NewBot(config BotConfig, deps BotDependencies) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	clientConfig := telegram.DefaultClientConfig(config.Token)
	clientConfig.Logger = config.Logger
	clientConfig.Debug = config.Debug
	client := telegram.NewClient(clientConfig)

	// Presenters
	keyboards := presenter.NewKeyboardBuilder()
	card := presenter.NewMemberCardPresenter()
	listings := presenter.NewListingPresenter()

	// Handlers
	startHandler := handler.NewStartHandler(deps.RegisterCmd, keyboards)
	profileHandler := handler.NewProfileHandler(deps.ProfileQuery, card, keyboards)
	activityHandler := handler.NewActivityHandler(deps.ActivityQuery, listings, keyboards)
	achievementsHandler := handler.NewAchievementsHandler(deps.CatalogQuery, listings)
	ranksHandler := handler.NewRanksHandler(listings)
	helpHandler := handler.NewHelpHandler(deps.Machine.IsAdmin)
	infoHandler := handler.NewInfoHandler()
	adminHandler := handler.NewAdminHandler(deps.Machine, deps.SessionStore, keyboards)

	wizardCallback := callback.NewWizardHandler(
		deps.Machine,
		deps.SessionStore,
		deps.MemberRepo,
		deps.SetBooksCmd,
		deps.GrantCmd,
		keyboards,
	)

	amountInput := handler.NewAmountInputHandler(deps.Machine, deps.SessionStore, deps.SetBooksCmd)

	// Middleware. Admins are whitelisted so wizard paging is never throttled.
	rateLimitConfig := middleware.DefaultRateLimitConfig()
	for _, id := range config.AdminIDs {
		rateLimitConfig.WhitelistedUsers[id] = true
	}
	rateLimiter := middleware.NewRateLimiter(rateLimitConfig)

	recoveryConfig := middleware.DefaultRecoveryConfig()
	recoveryConfig.Logger = config.Logger
	recovery := middleware.NewRecoveryMiddleware(recoveryConfig)

	// Router
	router := NewRouter(RouterConfig{Logger: config.Logger, Debug: config.Debug})

	router.RegisterCommand("start", startHandler)
	router.RegisterCommand("profile", profileHandler)
	router.RegisterCommand("activity", activityHandler)
	router.RegisterCommand("stats", activityHandler)
	router.RegisterCommand("achievements", achievementsHandler)
	router.RegisterCommand("ranks", ranksHandler)
	router.RegisterCommand("help", helpHandler)
	router.RegisterCommand("about", infoHandler)
	router.RegisterCommand("id", infoHandler)
	router.RegisterCommand("whereami", infoHandler)
	router.RegisterCommand("admin", adminHandler)

	router.RegisterCallbackPrefix("adm:", wizardCallback)
	router.RegisterCallbackPrefix("cmd:", router.CreateCommandCallbackHandler())
	router.RegisterCallbackPrefix("refresh:", router.CreateRefreshCallbackHandler())

	router.RegisterAmountInput(amountInput)

	return &Bot{
		config:         config,
		client:         client,
		router:         router,
		logger:         config.Logger,
		recordActivity: deps.RecordActivityCmd,
		rateLimiter:    rateLimiter,
		recovery:       recovery,
		updateSem:      make(chan struct{}, config.MaxConcurrentUpdates),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE MANAGEMENT
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the bot and begins receiving updates.
func (b *Bot) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.runningMu.Unlock()

	b.logger.Info("starting telegram bot", "mode", b.config.Mode)

	if err := b.verifyToken(ctx); err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}

	switch b.config.Mode {
	case "polling":
		// Polling conflicts with a registered webhook; drop it first.
		if err := b.client.DeleteWebhook(ctx, false); err != nil {
			b.logger.Warn("failed to delete webhook", "error", err)
		}
		return b.client.StartPolling(ctx, b.HandleUpdate)
	case "webhook":
		if b.config.WebhookURL == "" {
			return errors.New("webhook URL is required for webhook mode")
		}
		if err := b.client.SetWebhook(ctx, b.config.WebhookURL, 0, b.config.AllowedUpdates); err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		// Updates arrive through the HTTP server calling HandleUpdate.
		<-ctx.Done()
		return ctx.Err()
	default:
		return fmt.Errorf("unknown bot mode: %s", b.config.Mode)
	}
}

// Stop gracefully stops the bot.
func (b *Bot) Stop(ctx context.Context) error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	b.logger.Info("stopping telegram bot")

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.config.GracefulShutdownTimeout):
		b.logger.Warn("graceful shutdown timeout exceeded")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the bot is currently running.
func (b *Bot) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

// verifyToken verifies the bot token by calling getMe.
func (b *Bot) verifyToken(ctx context.Context) error {
	me, err := b.client.GetMe(ctx)
	if err != nil {
		return err
	}

	b.logger.Info("bot verified", "id", me.ID, "username", me.Username)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE HANDLING
// ══════════════════════════════════════════════════════════════════════════════

// HandleUpdate processes a single Telegram update. Exported so the webhook
// HTTP server can feed updates through the same path as polling.
func (b *Bot) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	select {
	case b.updateSem <- struct{}{}:
		defer func() { <-b.updateSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	b.wg.Add(1)
	defer b.wg.Done()

	switch {
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		return b.handleCallbackQuery(ctx, update.CallbackQuery)
	default:
		return nil
	}
}

// handleMessage processes a Telegram message.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg == nil || msg.From == nil || msg.From.IsBot || msg.Chat == nil {
		return nil
	}

	telegramID := msg.From.ID
	chatID := msg.Chat.ID

	if cmd := telegram.ExtractCommand(msg); cmd != "" {
		return b.handleCommand(ctx, telegramID, chatID, int(msg.MessageID), cmd, msg)
	}

	// Group traffic feeds the activity counters. Commands are already
	// excluded above; every other group message counts.
	if telegram.IsGroupChat(msg) {
		return b.countActivity(ctx, msg)
	}

	// Private text may be the wizard amount input.
	if msg.Text != "" {
		_, err := b.router.HandleTextInput(ctx, TextInputContext{
			TelegramID: telegramID,
			ChatID:     chatID,
			Text:       msg.Text,
			Client:     b.client,
		})
		return err
	}

	return nil
}

// countActivity records one group message. Rank change notifications are
// published as domain events and delivered by the event bus, so this path
// never replies directly.
func (b *Bot) countActivity(ctx context.Context, msg *telegram.Message) error {
	isComment := telegram.IsComment(msg, b.config.DiscussionChatID)

	_, err := b.recordActivity.Handle(ctx, command.RecordActivityCommand{
		MemberID:  msg.From.ID,
		Handle:    msg.From.Username,
		IsComment: isComment,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
	})
	if err != nil {
		b.logger.Error("failed to record activity",
			"member_id", msg.From.ID,
			"chat_id", msg.Chat.ID,
			"error", err,
		)
	}
	return err
}

// handleCommand processes a bot command.
func (b *Bot) handleCommand(
	ctx context.Context,
	telegramID, chatID int64,
	messageID int,
	cmd string,
	msg *telegram.Message,
) error {
	limit := b.rateLimiter.Check(telegramID)
	if !limit.Allowed {
		text := fmt.Sprintf("⏳ Слишком много запросов!\nПопробуй через %d секунд.", int(limit.RetryAfter.Seconds())+1)
		_, err := b.client.SendHTML(ctx, chatID, text)
		return err
	}

	result := b.recovery.Run(telegramID, "/"+cmd, func() error {
		return b.router.HandleCommand(ctx, cmd, CommandContext{
			TelegramID: telegramID,
			Username:   msg.From.Username,
			ChatID:     chatID,
			MessageID:  messageID,
			Message:    msg,
			Client:     b.client,
		})
	})

	if result.Recovered {
		_, err := b.client.SendHTML(ctx, chatID, result.UserMessage)
		return err
	}
	if result.Err != nil {
		b.logger.Error("command failed", "command", cmd, "telegram_id", telegramID, "error", result.Err)
	}
	return result.Err
}

// handleCallbackQuery processes a callback query from inline keyboard.
func (b *Bot) handleCallbackQuery(ctx context.Context, cq *telegram.CallbackQuery) error {
	if cq == nil || cq.From == nil {
		return nil
	}

	telegramID := cq.From.ID
	chatID := int64(0)
	messageID := int64(0)
	if cq.Message != nil && cq.Message.Chat != nil {
		chatID = cq.Message.Chat.ID
		messageID = cq.Message.MessageID
	}

	// Answer the query regardless of the outcome, removing the loading
	// spinner. Wizard alerts answer it themselves with a text.
	defer func() {
		_ = b.client.AnswerCallbackQuery(ctx, cq.ID, "", false)
	}()

	limit := b.rateLimiter.Check(telegramID)
	if !limit.Allowed {
		return b.client.AnswerCallbackQuery(ctx, cq.ID, "⏳ Слишком быстро! Подожди немного.", true)
	}

	result := b.recovery.Run(telegramID, "callback:"+cq.Data, func() error {
		return b.router.HandleCallback(ctx, cq.Data, CallbackContext{
			TelegramID: telegramID,
			ChatID:     chatID,
			MessageID:  int(messageID),
			QueryID:    cq.ID,
			Data:       cq.Data,
			Client:     b.client,
		})
	})

	if result.Recovered && chatID != 0 {
		_, _ = b.client.SendHTML(ctx, chatID, result.UserMessage)
		return nil
	}
	if result.Err != nil {
		b.logger.Error("callback failed", "data", cq.Data, "telegram_id", telegramID, "error", result.Err)
	}
	return result.Err
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT ACCESS
// ══════════════════════════════════════════════════════════════════════════════

// Client returns the Telegram client for direct API access.
// Use sparingly - prefer going through handlers.
func (b *Bot) Client() *telegram.Client {
	return b.client
}
