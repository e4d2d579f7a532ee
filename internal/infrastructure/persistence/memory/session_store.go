// Package memory holds in-process fallbacks used when Redis is disabled.
// Sessions then survive only until the next restart, which is acceptable
// for a single-instance deployment.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ficben/achievebot/internal/domain/wizard"
)

// SessionStore implements wizard.SessionStore in process memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]entry
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	session   wizard.Session
	expiresAt time.Time
}

// NewSessionStore creates an in-memory session store. A non-positive ttl
// disables expiry.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the operator's session, honouring expiry lazily.
func (s *SessionStore) Get(_ context.Context, operatorID int64) (*wizard.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[operatorID]
	s.mu.RUnlock()

	if !ok {
		return nil, wizard.ErrNoSession
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, operatorID)
		s.mu.Unlock()
		return nil, wizard.ErrNoSession
	}

	session := e.session
	return &session, nil
}

// Save stores a copy of the session, refreshing its TTL.
func (s *SessionStore) Save(_ context.Context, session *wizard.Session) error {
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[session.OperatorID] = entry{session: *session, expiresAt: expiresAt}
	s.mu.Unlock()
	return nil
}

// Delete removes the operator's session.
func (s *SessionStore) Delete(_ context.Context, operatorID int64) error {
	s.mu.Lock()
	delete(s.sessions, operatorID)
	s.mu.Unlock()
	return nil
}
