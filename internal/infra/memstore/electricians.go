package memstore

import (
	"context"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Electricians: applications (pending) and approved profiles
// ============================================================

func (s *Store) AddApplication(_ context.Context, e *domain.ElectricianProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(e.Email)
	if _, taken := s.emails[email]; taken {
		return &domain.ErrConflict{Message: "email already registered: " + email}
	}
	for _, a := range s.applications {
		if domain.NormalizeEmail(a.Email) == email {
			return &domain.ErrConflict{Message: "application already submitted: " + email}
		}
	}
	if _, ok := s.electricians[e.ID]; ok {
		return &domain.ErrConflict{Message: "electrician already exists: " + e.ID}
	}
	c := cloneElectrician(e)
	s.applications[e.ID] = &c
	return nil
}

func (s *Store) GetElectrician(_ context.Context, id string) (*domain.ElectricianProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.electricians[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "electrician", ID: id}
	}
	c := cloneElectrician(e)
	return &c, nil
}

func (s *Store) GetApplication(_ context.Context, id string) (*domain.ElectricianProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.applications[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "electrician application", ID: id}
	}
	c := cloneElectrician(e)
	return &c, nil
}

func (s *Store) FindApplicationByEmail(_ context.Context, email string) (*domain.ElectricianProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = domain.NormalizeEmail(email)
	for _, a := range s.applications {
		if domain.NormalizeEmail(a.Email) == email {
			c := cloneElectrician(a)
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListElectricians(_ context.Context) ([]domain.ElectricianProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return electricianList(s.electricians), nil
}

func (s *Store) ListApplications(_ context.Context) ([]domain.ElectricianProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return electricianList(s.applications), nil
}

// ApproveApplication removes the record from the pending collection, lets fn
// adjust it, stores it as approved and registers (or refreshes) its user.
func (s *Store) ApproveApplication(_ context.Context, id string, fn func(*domain.ElectricianProfile)) (*domain.ElectricianProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.applications[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "electrician application", ID: id}
	}
	c := cloneElectrician(e)
	if fn != nil {
		fn(&c)
	}
	c.User.Role = domain.RoleElectrician

	delete(s.applications, id)
	if u, exists := s.users[id]; exists {
		*u = c.User
	} else if err := s.insertUserLocked(&c.User); err != nil {
		s.applications[id] = e
		return nil, err
	}
	s.electricians[id] = &c

	out := cloneElectrician(&c)
	return &out, nil
}

func (s *Store) RejectApplication(_ context.Context, id string) (*domain.ElectricianProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.applications[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "electrician application", ID: id}
	}
	delete(s.applications, id)
	out := cloneElectrician(e)
	return &out, nil
}

// UpdateElectrician edits an approved profile, or a pending application
// when no approved profile has that id.
func (s *Store) UpdateElectrician(_ context.Context, id string, fn func(*domain.ElectricianProfile) error) (*domain.ElectricianProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, approved := s.electricians[id]
	if !approved {
		var ok bool
		if e, ok = s.applications[id]; !ok {
			return nil, &domain.ErrNotFound{Resource: "electrician", ID: id}
		}
	}
	c := cloneElectrician(e)
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.ID, c.Email, c.Role, c.IsApproved = e.ID, e.Email, e.Role, e.IsApproved
	*e = c
	if u, ok := s.users[id]; ok && approved {
		*u = c.User
	}
	out := cloneElectrician(&c)
	return &out, nil
}
