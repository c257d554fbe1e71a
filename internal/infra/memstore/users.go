package memstore

import (
	"context"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Users & Credentials
// ============================================================

func (s *Store) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertUserLocked(u)
}

func (s *Store) insertUserLocked(u *domain.User) error {
	email := domain.NormalizeEmail(u.Email)
	if _, taken := s.emails[email]; taken {
		return &domain.ErrConflict{Message: "email already registered: " + email}
	}
	for _, a := range s.applications {
		if domain.NormalizeEmail(a.Email) == email && a.ID != u.ID {
			return &domain.ErrConflict{Message: "email already registered: " + email}
		}
	}
	if _, exists := s.users[u.ID]; exists {
		return &domain.ErrConflict{Message: "user already exists: " + u.ID}
	}
	c := *u
	s.users[u.ID] = &c
	s.emails[email] = u.ID
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	c := *u
	return &c, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	c := *s.users[id]
	return &c, nil
}

// UpdateUser also refreshes the embedded user of an approved electrician so
// both views of the same person agree.
func (s *Store) UpdateUser(_ context.Context, userID string, fn func(*domain.User) error) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	c := *u
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.ID, c.Email, c.Role = u.ID, u.Email, u.Role
	*u = c
	if e, ok := s.electricians[userID]; ok {
		e.User = c
	}
	out := c
	return &out, nil
}

func (s *Store) ListUsers(_ context.Context, role domain.Role) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	sortUsers(out)
	return out, nil
}

func (s *Store) GetCredential(_ context.Context, userID string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.credentials[userID]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (s *Store) UpdateCredential(_ context.Context, userID string, fn func(*domain.Credential) error) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.credentials[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "credential", ID: userID}
	}
	next := *c
	if err := fn(&next); err != nil {
		return nil, err
	}
	*c = next
	out := next
	return &out, nil
}

func (s *Store) SaveCredential(_ context.Context, c *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := *c
	s.credentials[c.UserID] = &in
	return nil
}
