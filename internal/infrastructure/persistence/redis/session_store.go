// Package redis stores admin wizard sessions in Redis. Sessions are small
// JSON blobs with a TTL, so an abandoned wizard expires on its own and a
// bot restart does not drop an operator mid-flow.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ficben/achievebot/internal/domain/shared"
	"github.com/ficben/achievebot/internal/domain/wizard"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewClient creates a go-redis client from the configuration and verifies
// the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return client, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION STORE
// ══════════════════════════════════════════════════════════════════════════════

// DefaultSessionTTL - сколько живёт брошенная сессия мастера.
const DefaultSessionTTL = 15 * time.Minute

// PrefixSession is the key prefix for wizard sessions.
const PrefixSession = "wizard:session:"

// SessionStore implements wizard.SessionStore on Redis.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(operatorID int64) string {
	return PrefixSession + strconv.FormatInt(operatorID, 10)
}

// Get loads the operator's session.
func (s *SessionStore) Get(ctx context.Context, operatorID int64) (*wizard.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(operatorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, wizard.ErrNoSession
		}
		return nil, shared.WrapError("wizard", "Get", err, fmt.Sprintf("session for %d", operatorID))
	}

	var session wizard.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		// Поломанную сессию проще выбросить, чем чинить.
		_ = s.client.Del(ctx, sessionKey(operatorID)).Err()
		return nil, wizard.ErrNoSession
	}
	return &session, nil
}

// Save stores the session, refreshing its TTL.
func (s *SessionStore) Save(ctx context.Context, session *wizard.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return shared.WrapError("wizard", "Save", err, fmt.Sprintf("marshal session for %d", session.OperatorID))
	}

	if err := s.client.Set(ctx, sessionKey(session.OperatorID), raw, s.ttl).Err(); err != nil {
		return shared.WrapError("wizard", "Save", err, fmt.Sprintf("session for %d", session.OperatorID))
	}
	return nil
}

// Delete removes the operator's session.
func (s *SessionStore) Delete(ctx context.Context, operatorID int64) error {
	if err := s.client.Del(ctx, sessionKey(operatorID)).Err(); err != nil {
		return shared.WrapError("wizard", "Delete", err, fmt.Sprintf("session for %d", operatorID))
	}
	return nil
}
