// Package main - точка входа Telegram-бота достижений сообщества.
//
// Бот считает активность участников (сообщения и комментарии), пересчитывает
// звания по трём трекам и ведёт журнал ачивок. Админы выдают ручные ачивки
// и правят число прочитанных книг через пошаговый мастер.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Event Handlers)
// - Infrastructure: реализация репозиториев, Telegram API, каталог
// - Interface: Telegram Bot handlers, HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ficben/achievebot/config"

	// Application layer
	"github.com/ficben/achievebot/internal/application/command"
	"github.com/ficben/achievebot/internal/application/eventhandler"
	"github.com/ficben/achievebot/internal/application/query"

	// Domain layer
	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/shared"
	"github.com/ficben/achievebot/internal/domain/wizard"

	// Infrastructure layer
	"github.com/ficben/achievebot/internal/infrastructure/catalog"
	"github.com/ficben/achievebot/internal/infrastructure/messaging"
	"github.com/ficben/achievebot/internal/infrastructure/persistence/memory"
	"github.com/ficben/achievebot/internal/infrastructure/persistence/postgres"
	"github.com/ficben/achievebot/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/ficben/achievebot/internal/interface/http"
	"github.com/ficben/achievebot/internal/interface/telegram"

	// Packages
	"github.com/ficben/achievebot/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting achievement bot",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	memberRepo := postgres.NewMemberRepository(dbConn)
	awardRepo := postgres.NewAwardRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ХРАНИЛИЩЕ СЕССИЙ МАСТЕРА (Redis или память)
	// ─────────────────────────────────────────────────────────────────────────
	var sessionStore wizard.SessionStore
	if cfg.Redis.Disabled {
		log.Info("redis disabled, using in-memory wizard sessions")
		sessionStore = memory.NewSessionStore(cfg.Redis.SessionTTL)
	} else {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns

		redisClient, err := redis.NewClient(ctx, redisCfg)
		if err != nil {
			// Бот без Redis живёт, сессии мастера просто не переживают рестарт.
			log.Warn("redis unavailable, falling back to in-memory wizard sessions", "error", err)
			sessionStore = memory.NewSessionStore(cfg.Redis.SessionTTL)
		} else {
			defer func() { _ = redisClient.Close() }()
			sessionStore = redis.NewSessionStore(redisClient, cfg.Redis.SessionTTL)
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. КАТАЛОГ АЧИВОК
	// ─────────────────────────────────────────────────────────────────────────
	var achCatalog *achievement.Catalog
	achCatalog, err = catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		// Без каталога бот работает, недоступны только разделы каталога
		// и выдача ручных ачивок.
		log.Warn("achievement catalog not loaded", "path", cfg.Catalog.Path, "error", err)
		achCatalog = nil
	} else {
		log.Info("achievement catalog loaded", "path", cfg.Catalog.Path)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	evaluator := achievement.NewAutoEvaluator(awardRepo)

	registerCmd := command.NewRegisterMemberHandler(memberRepo, eventBus)
	recordActivityCmd := command.NewRecordActivityHandler(memberRepo, eventBus)
	setBooksCmd := command.NewSetBooksCountHandler(memberRepo, evaluator, eventBus)
	grantCmd := command.NewGrantAchievementHandler(memberRepo, awardRepo, achCatalog, eventBus)

	profileQuery := query.NewGetProfileHandler(memberRepo, awardRepo, achCatalog, evaluator, eventBus)
	activityQuery := query.NewGetRecentActivityHandler(memberRepo)
	catalogQuery := query.NewGetCatalogHandler(achCatalog)

	machine := wizard.NewMachine(cfg.Telegram.AdminIDs, achCatalog)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. СОЗДАНИЕ TELEGRAM BOT
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing Telegram bot...")

	botConfig := telegram.DefaultBotConfig(cfg.Telegram.Token)
	if cfg.Telegram.UseWebhook {
		botConfig.Mode = "webhook"
		botConfig.WebhookURL = cfg.Telegram.WebhookURL
	}
	botConfig.DiscussionChatID = cfg.Telegram.DiscussionChatID
	botConfig.AdminIDs = cfg.Telegram.AdminIDs
	botConfig.Debug = cfg.App.Debug
	botConfig.Logger = log
	botConfig.GracefulShutdownTimeout = cfg.App.ShutdownTimeout

	botDeps := telegram.BotDependencies{
		MemberRepo:        memberRepo,
		Machine:           machine,
		SessionStore:      sessionStore,
		RegisterCmd:       registerCmd,
		RecordActivityCmd: recordActivityCmd,
		SetBooksCmd:       setBooksCmd,
		GrantCmd:          grantCmd,
		ProfileQuery:      profileQuery,
		ActivityQuery:     activityQuery,
		CatalogQuery:      catalogQuery,
	}

	bot, err := telegram.NewBot(botConfig, botDeps)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")
	rankChangedHandler := eventhandler.NewOnRankChangedHandler(bot.Client(), log)
	eventBus.Subscribe(shared.EventRankChanged, rankChangedHandler.Handle)

	// ─────────────────────────────────────────────────────────────────────────
	// 12. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.WebhookSecret = cfg.Telegram.WebhookSecret

	httpLog := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	httpDeps := httpserver.Dependencies{
		DB:     dbConn,
		Logger: httpLog,
	}
	if cfg.Telegram.UseWebhook {
		httpDeps.Updates = bot.HandleUpdate
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 13. ЗАПУСК СЕРВИСОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("starting services...")

	errCh := make(chan error, 2)

	go func() {
		log.Info("starting HTTP server", "address", httpConfig.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	go func() {
		log.Info("starting Telegram bot", "mode", botConfig.Mode)
		if err := bot.Start(ctx); err != nil {
			errCh <- fmt.Errorf("telegram bot error: %w", err)
		}
	}()

	if cfg.HTTP.KeepAliveURL != "" {
		go httpserver.KeepAlive(ctx, cfg.HTTP.KeepAliveURL, cfg.HTTP.KeepAliveInterval, httpLog)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 14. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("achievement bot is running",
		"http_address", httpConfig.Address(),
		"telegram_mode", botConfig.Mode,
		"admins", len(cfg.Telegram.AdminIDs),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	log.Info("stopping Telegram bot...")
	if err := bot.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop bot gracefully", "error", err)
		shutdownErr = err
	}

	log.Info("stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug || cfg.Observability.LogLevel == "debug" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
