package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session: not found")

// Store is a transient per-session key-value scratch space, keyed by a session
// ID carried in a cookie. The registration wizard is its only serious user:
// values must survive redirects within one flow (reads and writes reset the
// session deadline) but nothing here is durable; abandoning the wizard just
// lets the entry expire.
type Store interface {
	// Set stores value under (sessionID, key) and resets the session deadline.
	Set(ctx context.Context, sessionID, key string, value []byte) error
	// Get returns the value for (sessionID, key), or ErrNotFound.
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	// Delete removes one key; missing keys are a no-op.
	Delete(ctx context.Context, sessionID, key string) error
	// Clear drops every key for the session.
	Clear(ctx context.Context, sessionID string) error
}
