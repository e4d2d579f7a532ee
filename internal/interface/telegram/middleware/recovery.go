package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY MIDDLEWARE
// Catches panics in handlers and converts them to user-friendly error
// messages. The bot must stay responsive even if a handler crashes.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// UserErrorMessage is the message sent to users when a panic occurs.
	UserErrorMessage string

	// Logger for panic reports.
	Logger *slog.Logger
}

// DefaultRecoveryConfig returns sensible defaults for recovery middleware.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		UserErrorMessage: "😔 Что-то пошло не так. Попробуй ещё раз через пару минут.",
		Logger:           slog.Default(),
	}
}

// RecoveryResult reports whether a panic was recovered.
type RecoveryResult struct {
	// Recovered indicates that the wrapped function panicked.
	Recovered bool

	// UserMessage is the message to show to the user when recovered.
	UserMessage string

	// Err is the error returned by the wrapped function when it did not
	// panic.
	Err error
}

// RecoveryMiddleware recovers from panics and provides error handling.
type RecoveryMiddleware struct {
	config RecoveryConfig
	logger *slog.Logger
}

// NewRecoveryMiddleware creates a new recovery middleware.
func NewRecoveryMiddleware(config RecoveryConfig) *RecoveryMiddleware {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &RecoveryMiddleware{
		config: config,
		logger: config.Logger,
	}
}

// Run executes fn, converting a panic into a RecoveryResult. telegramID and
// operation only feed the log record.
func (m *RecoveryMiddleware) Run(telegramID int64, operation string, fn func() error) (result RecoveryResult) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic recovered",
				"operation", operation,
				"telegram_id", telegramID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			result = RecoveryResult{
				Recovered:   true,
				UserMessage: m.config.UserErrorMessage,
			}
		}
	}()

	return RecoveryResult{Err: fn()}
}
