package memstore

import (
	"context"
	"sort"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Notifications & chat messages
// ============================================================

func (s *Store) AddNotification(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *n
	s.notes[n.ID] = &c
	return nil
}

func (s *Store) ListNotifications(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, 0)
	for _, n := range s.notes {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// MarkNotificationRead is idempotent.
func (s *Store) MarkNotificationRead(_ context.Context, id string) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "notification", ID: id}
	}
	n.IsRead = true
	c := *n
	return &c, nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.notes {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (s *Store) AddMessage(_ context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *m
	s.messages[m.JobID] = append(s.messages[m.JobID], &c)
	return nil
}

func (s *Store) ListMessages(_ context.Context, jobID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv := s.messages[jobID]
	out := make([]domain.Message, 0, len(conv))
	for _, m := range conv {
		out = append(out, *m)
	}
	return out, nil
}

func (s *Store) MarkMessagesRead(_ context.Context, jobID, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, m := range s.messages[jobID] {
		if m.RecipientID == recipientID && !m.IsRead {
			m.IsRead = true
			count++
		}
	}
	return count, nil
}
