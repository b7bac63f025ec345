package session

import (
	"context"
	"errors"
)

var errMissingID = errors.New("session: missing session_id")

// Store defines how sessions are stored and retrieved. Both the request
// pipeline and the realtime bridge resolve sessions through the same store,
// so a login on one transport is immediately visible on the other.
type Store interface {
	// Get resolves a session by ID. A missing or expired session is
	// (nil, nil), not an error.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Save persists the session and resets its TTL. It must be awaited
	// before any response that depends on the written state.
	Save(ctx context.Context, s *Session) error

	Delete(ctx context.Context, sessionID string) error
}
