package memstore

import (
	"context"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Services: pending proposals and the active catalog
// ============================================================

func (s *Store) AddService(_ context.Context, svc *domain.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[svc.ID]; ok {
		return &domain.ErrConflict{Message: "service already exists: " + svc.ID}
	}
	if _, ok := s.pendingSvcs[svc.ID]; ok {
		return &domain.ErrConflict{Message: "service already exists: " + svc.ID}
	}
	c := cloneService(svc)
	if c.Status == domain.ServiceActive {
		s.services[c.ID] = &c
	} else {
		c.Status = domain.ServicePending
		s.pendingSvcs[c.ID] = &c
	}
	return nil
}

// GetService looks in both collections; Status tells which one matched.
func (s *Store) GetService(_ context.Context, id string) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.services[id]; ok {
		c := cloneService(v)
		return &c, nil
	}
	if v, ok := s.pendingSvcs[id]; ok {
		c := cloneService(v)
		return &c, nil
	}
	return nil, &domain.ErrNotFound{Resource: "service", ID: id}
}

// ListServices returns one collection, or both when status is empty.
func (s *Store) ListServices(_ context.Context, status domain.ServiceStatus) ([]domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch status {
	case domain.ServiceActive:
		return serviceList(s.services), nil
	case domain.ServicePending:
		return serviceList(s.pendingSvcs), nil
	}
	return append(serviceList(s.services), serviceList(s.pendingSvcs)...), nil
}

func (s *Store) ApproveService(_ context.Context, id string) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.pendingSvcs[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "pending service", ID: id}
	}
	delete(s.pendingSvcs, id)
	v.Status = domain.ServiceActive
	s.services[id] = v

	c := cloneService(v)
	return &c, nil
}

func (s *Store) RejectService(_ context.Context, id string) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.pendingSvcs[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "pending service", ID: id}
	}
	delete(s.pendingSvcs, id)
	c := cloneService(v)
	return &c, nil
}
