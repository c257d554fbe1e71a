package realtime

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
)

// ============================================================
// Delayed deliveries
// ============================================================

// SendMessage tells the recipient about a new message after the message
// delay. The notification carries a preview of the text.
func (s *Simulator) SendMessage(ctx context.Context, fromID, toID, text string) {
	ctx = context.WithoutCancel(ctx)
	s.after(s.cfg.MessageDelay, func() {
		locale, err := s.localeOf(ctx, toID)
		if err != nil {
			s.logger.Warn("message recipient vanished", zap.String("from", fromID), zap.String("to", toID))
			return
		}
		s.addNotification(ctx, domain.NotificationInput{
			UserID:  toID,
			Title:   s.market.Catalog().T(locale, i18n.KeyNewMessageTitle),
			Message: domain.Preview(text),
			Type:    domain.NotifyMessage,
		})
	})
}

// DirectMessage validates a message sent outside a job conversation and
// schedules its delivery.
func (s *Simulator) DirectMessage(ctx context.Context, from domain.Principal, req domain.RealtimeMessageRequest) error {
	ctx, span := tracer.Start(ctx, "Simulator.DirectMessage")
	defer span.End()

	text := strings.TrimSpace(req.Message)
	switch {
	case req.RecipientID == "":
		return &domain.ErrValidation{Field: "recipientId", Message: "recipientId is required"}
	case text == "":
		return &domain.ErrValidation{Field: "message", Message: "message cannot be empty"}
	case req.RecipientID == from.UserID:
		return &domain.ErrValidation{Field: "recipientId", Message: "cannot message yourself"}
	}
	if _, err := s.localeOf(ctx, req.RecipientID); err != nil {
		return err
	}

	s.logger.Info("realtime message queued",
		zap.String("from", from.UserID),
		zap.String("to", req.RecipientID),
	)
	s.SendMessage(ctx, from.UserID, req.RecipientID, text)
	return nil
}

// SendNotification stores a notification for a user after the notify
// delay.
func (s *Simulator) SendNotification(ctx context.Context, in domain.NotificationInput) error {
	ctx, span := tracer.Start(ctx, "Simulator.SendNotification")
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := s.localeOf(ctx, in.UserID); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	s.after(s.cfg.NotifyDelay, func() { s.addNotification(ctx, in) })
	return nil
}

// UpdateJobStatus applies a status change right away and confirms it to
// the actor after the job notify delay.
func (s *Simulator) UpdateJobStatus(ctx context.Context, actor domain.Principal, jobID string, to domain.JobStatus) (*domain.Job, error) {
	ctx, span := tracer.Start(ctx, "Simulator.UpdateJobStatus")
	defer span.End()

	j, err := s.market.UpdateJobStatus(ctx, actor, jobID, to)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	s.after(s.cfg.JobNotifyDelay, func() {
		locale, err := s.localeOf(ctx, actor.UserID)
		if err != nil {
			return
		}
		c := s.market.Catalog()
		s.addNotification(ctx, domain.NotificationInput{
			UserID:  actor.UserID,
			Title:   c.T(locale, i18n.KeyJobUpdateTitle),
			Message: c.T(locale, i18n.KeyJobUpdateMessage, c.Status(locale, to)),
			Type:    domain.NotifyJob,
		})
	})
	return j, nil
}
