// Package session implements the opaque-token session store backing
// request authentication. Tokens map to a customer identity with an
// absolute expiry; the store is a TTL'd key-value space with no
// cross-token ordering requirements.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"trkart/internal/config"
	"trkart/internal/models"
)

// Store creates, resolves, and invalidates sessions.
type Store interface {
	// Create mints a new session for the identity. Remember-me logins
	// get the long TTL, everything else the short one.
	Create(ctx context.Context, identity models.Identity, rememberMe bool) (*models.Session, error)

	// Resolve looks up a token. The bool result is false for tokens
	// that are absent or past their expiry; that is not an error.
	Resolve(ctx context.Context, token string) (*models.Session, bool, error)

	// Delete invalidates a token. Deleting an absent or already
	// expired token is a no-op, which makes logout idempotent.
	Delete(ctx context.Context, token string) error
}

const keyPrefix = "session:"

type redisStore struct {
	client *redis.Client
	cfg    config.SessionConfig
	now    func() time.Time
}

// NewRedisStore creates a Store backed by redis. Expiry is enforced
// twice: the key carries a TTL, and Resolve re-checks the recorded
// expiry so a lagging eviction can never extend a session.
func NewRedisStore(client *redis.Client, cfg config.SessionConfig) Store {
	return &redisStore{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *redisStore) Create(ctx context.Context, identity models.Identity, rememberMe bool) (*models.Session, error) {
	ttl := s.cfg.TTL
	if rememberMe {
		ttl = s.cfg.RememberTTL
	}

	sess := &models.Session{
		Token:      uuid.NewString(),
		CustomerID: identity.CustomerID,
		Email:      identity.Email,
		FullName:   identity.FullName,
		ExpiresAt:  s.now().Add(ttl),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return sess, nil
}

func (s *redisStore) Resolve(ctx context.Context, token string) (*models.Session, bool, error) {
	if token == "" {
		return nil, false, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, false, fmt.Errorf("failed to decode session: %w", err)
	}
	sess.Token = token

	if !sess.Valid(s.now()) {
		return nil, false, nil
	}

	return &sess, true, nil
}

func (s *redisStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
