// Package session models the per-visitor shopping session. Session state is
// owned by exactly one active browsing session and is persisted behind the
// Store port; it is never shared between sessions and never part of the
// system of record.
package session

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no session exists for the given ID.
var ErrNotFound = errors.New("session not found")

// Selection is one cart entry kept in the session: a product reference plus
// the selected quantity.
type Selection struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the in-flight cart state for one session.
type Cart struct {
	SessionID  string      `json:"sessionId"`
	Selections []Selection `json:"selections"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Store is the session persistence port: an opaque blob store keyed by
// session ID. Implementations decide retention (TTL).
type Store interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Set(ctx context.Context, c *Cart) error
	Clear(ctx context.Context, sessionID string) error
}
