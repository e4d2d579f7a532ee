// Package http implements the HTTP surface of the bot: the Telegram
// webhook endpoint, health checks and the keep-alive pinger used on
// hostings that put idle services to sleep.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ficben/achievebot/internal/infrastructure/external/telegram"
	"github.com/ficben/achievebot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	// WebhookPath - path Telegram posts updates to.
	WebhookPath string

	// WebhookSecret - value of the X-Telegram-Bot-Api-Secret-Token header.
	// Empty disables the check.
	WebhookSecret string

	// ReadTimeout - maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout - maximum duration for writing the response.
	WriteTimeout time.Duration

	// IdleTimeout - maximum duration for idle connections.
	IdleTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		WebhookPath:  "/webhook",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Pinger checks a backing service for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UpdateHandler consumes one decoded Telegram update.
type UpdateHandler func(ctx context.Context, update *telegram.Update) error

// Dependencies contains everything the HTTP handlers need.
type Dependencies struct {
	// Updates receives webhook updates. Nil disables the webhook route.
	Updates UpdateHandler

	// DB is checked by /healthz.
	DB Pinger

	// Logger for request logging.
	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the HTTP server of the bot.
type Server struct {
	config Config
	deps   Dependencies
	logger *logger.Logger
	srv    *http.Server
}

// NewServer creates a new Server.
func NewServer(config Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}

	s := &Server{
		config: config,
		deps:   deps,
		logger: deps.Logger.With(logger.Component("http")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)
	if deps.Updates != nil {
		mux.HandleFunc("POST "+config.WebhookPath, s.handleWebhook)
	}

	s.srv = &http.Server{
		Addr:         config.Address(),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// Start runs the server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logger.String("addr", s.config.Address()))

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "achievebot is running")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{"status": "ok"}

	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.deps.DB.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		} else {
			body["database"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.config.WebhookSecret != "" &&
		r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != s.config.WebhookSecret {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&update); err != nil {
		s.logger.Warn("malformed webhook body", logger.Err(err))
		// Telegram retries non-2xx responses forever; swallow bad bodies.
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.deps.Updates(r.Context(), &update); err != nil {
		s.logger.Error("failed to handle webhook update",
			logger.Int64("update_id", update.UpdateID),
			logger.Err(err),
		)
	}

	w.WriteHeader(http.StatusOK)
}

// ══════════════════════════════════════════════════════════════════════════════
// KEEP-ALIVE PINGER
// Free hostings stop idle services; a periodic self-request keeps the
// process warm. No-op when url is empty.
// ══════════════════════════════════════════════════════════════════════════════

// KeepAlive pings url every interval until ctx is cancelled.
func KeepAlive(ctx context.Context, url string, interval time.Duration, log *logger.Logger) {
	if url == "" {
		return
	}
	if log == nil {
		log = logger.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	client := &http.Client{Timeout: 30 * time.Second}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				log.Warn("keep-alive request build failed", logger.Err(err))
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				log.Warn("keep-alive ping failed", logger.Err(err))
				continue
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
	}
}
