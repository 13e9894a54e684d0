package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"trkart/internal/config"
	"trkart/internal/models"
)

// MemoryStore is an in-process Store with the same lazy-expiry
// semantics as the redis implementation. Used in tests and suitable
// for single-node development without redis.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	cfg      config.SessionConfig
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore. The clock is injectable so
// expiry behavior is testable without sleeping.
func NewMemoryStore(cfg config.SessionConfig, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		sessions: make(map[string]models.Session),
		cfg:      cfg,
		now:      now,
	}
}

func (s *MemoryStore) Create(_ context.Context, identity models.Identity, rememberMe bool) (*models.Session, error) {
	ttl := s.cfg.TTL
	if rememberMe {
		ttl = s.cfg.RememberTTL
	}

	sess := models.Session{
		Token:      uuid.NewString(),
		CustomerID: identity.CustomerID,
		Email:      identity.Email,
		FullName:   identity.FullName,
		ExpiresAt:  s.now().Add(ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return &sess, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (*models.Session, bool, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	s.mu.Unlock()

	if !ok || !sess.Valid(s.now()) {
		return nil, false, nil
	}

	return &sess, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Expire force-expires a token, for tests exercising lazy expiry.
func (s *MemoryStore) Expire(token string, at time.Time) {
	s.mu.Lock()
	if sess, ok := s.sessions[token]; ok {
		sess.ExpiresAt = at
		s.sessions[token] = sess
	}
	s.mu.Unlock()
}
