package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Notifications
// ============================================================

// AddNotification stores a free-form notification for one user.
func (m *Marketplace) AddNotification(ctx context.Context, in domain.NotificationInput) (*domain.Notification, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.AddNotification")
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = domain.NotifySystem
	}
	if _, err := m.store.GetUser(ctx, in.UserID); err != nil {
		if _, appErr := m.store.GetApplication(ctx, in.UserID); appErr != nil {
			return nil, err
		}
	}

	n := domain.Notification{
		ID:        m.newID(),
		UserID:    in.UserID,
		Title:     in.Title,
		Message:   in.Message,
		Type:      in.Type,
		Timestamp: m.now(),
	}
	if err := m.store.AddNotification(ctx, &n); err != nil {
		return nil, fmt.Errorf("add notification: %w", err)
	}
	if m.metrics != nil {
		m.metrics.IncrNotification(n.Type)
	}
	m.publish(domain.EventNotificationAdded, n, n.UserID)
	return &n, nil
}

// ListNotifications returns the user's notifications, newest first, with
// the unread count.
func (m *Marketplace) ListNotifications(ctx context.Context, userID string) (*domain.NotificationList, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.ListNotifications")
	defer span.End()

	ns, err := m.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread := 0
	for _, n := range ns {
		if !n.IsRead {
			unread++
		}
	}
	return &domain.NotificationList{Notifications: ns, UnreadCount: unread}, nil
}

// MarkNotificationRead flags one of the caller's notifications. Marking an
// already read notification succeeds without change.
func (m *Marketplace) MarkNotificationRead(ctx context.Context, actor domain.Principal, id string) (*domain.Notification, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.MarkNotificationRead")
	defer span.End()

	ns, err := m.store.ListNotifications(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	owned := false
	for _, n := range ns {
		if n.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		return nil, &domain.ErrNotFound{Resource: "notification", ID: id}
	}

	n, err := m.store.MarkNotificationRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	m.publish(domain.EventNotificationRead, n, actor.UserID)
	return n, nil
}

// MarkAllNotificationsRead flags every unread notification of the user.
func (m *Marketplace) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.MarkAllNotificationsRead")
	defer span.End()

	count, err := m.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	if count > 0 {
		m.logger.Debug("notifications marked read", zap.String("user_id", userID), zap.Int("count", count))
		m.publish(domain.EventNotificationRead, map[string]any{"userId": userID, "count": count}, userID)
	}
	return count, nil
}

// ============================================================
// Stats
// ============================================================

// Stats derives the admin counters from a consistent snapshot.
func (m *Marketplace) Stats(ctx context.Context) (*domain.Stats, error) {
	ctx, span := marketTracer.Start(ctx, "Marketplace.Stats")
	defer span.End()

	snap, err := m.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	st := domain.ComputeStats(snap, m.now())
	return &st, nil
}

// AdminStats adds the runtime counters to Stats.
func (m *Marketplace) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	st, err := m.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := &domain.AdminStats{Stats: *st}
	if m.metrics != nil {
		out.Platform = m.metrics.Snapshot()
	}
	return out, nil
}
