package memstore

import (
	"context"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Jobs
// ============================================================

func (s *Store) CreateJob(_ context.Context, j *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[j.ID]; ok {
		return &domain.ErrConflict{Message: "job already exists: " + j.ID}
	}
	c := cloneJob(j)
	s.jobs[j.ID] = &c
	return nil
}

func (s *Store) GetJob(_ context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "job", ID: id}
	}
	c := cloneJob(j)
	return &c, nil
}

// ListJobs returns matching jobs, newest first.
func (s *Store) ListJobs(_ context.Context, f domain.JobFilter) ([]domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Job, 0)
	for _, j := range s.jobs {
		if f.Matches(j) {
			out = append(out, cloneJob(j))
		}
	}
	sortJobs(out)
	return out, nil
}

func (s *Store) UpdateJob(_ context.Context, id string, fn func(*domain.Job) error) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "job", ID: id}
	}
	c := cloneJob(j)
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.ID = j.ID
	*j = c

	out := cloneJob(&c)
	return &out, nil
}
