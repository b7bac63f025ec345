package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a mutex-guarded map. It mirrors the Redis
// store's last-writer-wins semantics and is used in tests and as a
// development fallback when no Redis address is configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if time.Now().After(s.ExpiresAt) {
		delete(m.sessions, sessionID)
		return nil, nil
	}

	return s.clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	if s.SessionID == "" {
		return errMissingID
	}

	s.ExpiresAt = time.Now().Add(TTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = s.clone()

	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
