package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
)

var _ port.SessionStore = (*MemoryStore)(nil)

// MemoryStore is the single-process session store used when no Redis is
// configured. Expired sessions are dropped lazily on read.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	byHash   map[string]string
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		byHash:   make(map[string]string),
		now:      time.Now,
	}
}

func (m *MemoryStore) SaveSession(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *s
	m.sessions[s.ID] = &c
	if s.RefreshHash != "" {
		m.byHash[s.RefreshHash] = s.ID
	}
	return nil
}

// Len counts sessions that have not expired.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	now := m.now()
	for _, s := range m.sessions {
		if !s.Expired(now) {
			n++
		}
	}
	return n
}

func (m *MemoryStore) getLocked(id string) *domain.Session {
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if s.Expired(m.now()) {
		m.deleteLocked(s)
		return nil
	}
	return s
}

func (m *MemoryStore) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.getLocked(sessionID)
	if s == nil {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *MemoryStore) GetSessionByRefreshHash(_ context.Context, hash string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byHash[hash]
	if !ok {
		return nil, nil
	}
	s := m.getLocked(id)
	if s == nil {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *MemoryStore) RotateRefresh(_ context.Context, sessionID, oldHash, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.getLocked(sessionID)
	if s == nil || s.RefreshHash != oldHash {
		return &domain.ErrUnauthorized{Message: "refresh token already used"}
	}
	delete(m.byHash, oldHash)
	s.RefreshHash = newHash
	m.byHash[newHash] = s.ID
	return nil
}

func (m *MemoryStore) UpdateSessionUser(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.UserID == user.ID {
			s.User = user
		}
	}
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		m.deleteLocked(s)
	}
	return nil
}

func (m *MemoryStore) DeleteUserSessions(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.UserID == userID {
			m.deleteLocked(s)
		}
	}
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) deleteLocked(s *domain.Session) {
	delete(m.sessions, s.ID)
	if s.RefreshHash != "" {
		delete(m.byHash, s.RefreshHash)
	}
}
