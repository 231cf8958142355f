// Package redis implements the session storage port on Redis. Session carts
// are opaque JSON blobs keyed by session ID with a retention TTL, replacing
// the browser local storage the storefront UI previously relied on.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-redis/redis/v8"

	"github.com/dhruvnair/bazaarkart/internal/domain/session"
)

const keyPrefix = "cart:"

var _ session.Store = (*SessionStore)(nil)

// SessionStore persists session carts in Redis.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore connects to Redis and verifies connectivity with a ping.
// Carts expire after ttl of inactivity; every Set refreshes the clock.
func NewSessionStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*SessionStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}

	return &SessionStore{rdb: rdb, ttl: ttl}, nil
}

// Ping reports Redis connectivity; used by the readiness probe.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *SessionStore) Close() error {
	return s.rdb.Close()
}

// Get loads a session cart. Returns session.ErrNotFound for unknown or
// expired sessions.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*session.Cart, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting session %q", sessionID)
	}

	var c session.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "decoding session %q", sessionID)
	}
	return &c, nil
}

// Set stores the cart under its session ID, refreshing the TTL.
func (s *SessionStore) Set(ctx context.Context, c *session.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrapf(err, "encoding session %q", c.SessionID)
	}
	if err := s.rdb.Set(ctx, keyPrefix+c.SessionID, data, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "storing session %q", c.SessionID)
	}
	return nil
}

// Clear removes the session cart. Clearing an unknown session is a no-op.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return errors.Wrapf(err, "clearing session %q", sessionID)
	}
	return nil
}
