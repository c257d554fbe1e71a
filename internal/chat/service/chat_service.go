// Package service: chat_service.go implements the ChatService.
//
// ============================================================
// ARCHITECTURE: Strategy pattern for replies
// ============================================================
//
// The ChatService owns the job conversation. Sending a message:
//  1. Checks the caller takes part in the job
//  2. Stores the line and publishes MESSAGE_SENT to both participants
//  3. Hands the line to the MessageDeliverer (live "New Message" notification)
//  4. Offers the line to every registered ReplyStrategy; the first one
//     that accepts it answers on behalf of the recipient after replyDelay
//
// Replies go through steps 2 and 3 but never through step 4, so two
// strategies can never ping-pong.
package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/chat/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/chat/port"
	maindomain "github.com/boddenberg/sparkhub-bfa/internal/domain"
	mainport "github.com/boddenberg/sparkhub-bfa/internal/port"
)

var chatTracer = otel.Tracer("chat/service")

// ============================================================
// ReplyStrategy: interface every automatic responder implements
// ============================================================

// ReplyStrategy decides whether and how the recipient answers a message
// automatically.
type ReplyStrategy interface {
	CanHandle(rc *domain.ReplyContext) bool
	Reply(ctx context.Context, rc *domain.ReplyContext) (string, error)
}

// ============================================================
// ChatService
// ============================================================

type ChatService struct {
	store      port.ConversationStore
	deliverer  port.MessageDeliverer
	events     mainport.EventPublisher
	strategies []ReplyStrategy
	replyDelay time.Duration
	logger     *zap.Logger
	now        func() time.Time

	done      chan struct{}
	closeOnce sync.Once
	pending   sync.WaitGroup
}

// NewChatService wires the conversation service. deliverer and events may
// be nil.
func NewChatService(
	store port.ConversationStore,
	deliverer port.MessageDeliverer,
	events mainport.EventPublisher,
	strategies []ReplyStrategy,
	replyDelay time.Duration,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		store:      store,
		deliverer:  deliverer,
		events:     events,
		strategies: strategies,
		replyDelay: replyDelay,
		logger:     logger,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// SendMessage posts a line into the job conversation. The recipient is
// always the other participant of the job.
func (s *ChatService) SendMessage(ctx context.Context, actor maindomain.Principal, jobID, text string) (*maindomain.Message, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.SendMessage")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID))

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &maindomain.ErrValidation{Field: "message", Message: "message is required"}
	}
	if utf8.RuneCountInString(text) > domain.MaxMessageLen {
		return nil, &maindomain.ErrValidation{Field: "message", Message: "message is too long"}
	}

	job, err := s.participantJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	recipient := job.CustomerID
	if actor.UserID == job.CustomerID {
		recipient = job.ElectricianID
	}

	msg, err := s.deliver(ctx, job, actor.UserID, recipient, text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("chat message sent",
		zap.String("job_id", job.ID),
		zap.String("sender_id", actor.UserID),
		zap.Int("length", len(text)),
	)

	rc := &domain.ReplyContext{Job: *job, Message: *msg, Locale: s.localeOf(ctx, actor.UserID)}
	for _, strategy := range s.strategies {
		if strategy.CanHandle(rc) {
			s.scheduleReply(strategy, rc)
			break
		}
	}
	return msg, nil
}

// ListMessages returns the conversation with the caller's unread count.
func (s *ChatService) ListMessages(ctx context.Context, actor maindomain.Principal, jobID string) (*domain.Conversation, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.ListMessages")
	defer span.End()

	job, err := s.participantJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	unread := 0
	for _, m := range msgs {
		if m.RecipientID == actor.UserID && !m.IsRead {
			unread++
		}
	}
	return &domain.Conversation{
		JobID:         job.ID,
		CustomerID:    job.CustomerID,
		ElectricianID: job.ElectricianID,
		Messages:      msgs,
		UnreadCount:   unread,
	}, nil
}

// MarkRead flags every line addressed to the caller as read.
func (s *ChatService) MarkRead(ctx context.Context, actor maindomain.Principal, jobID string) (*domain.ReadResult, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.MarkRead")
	defer span.End()

	job, err := s.participantJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	n, err := s.store.MarkMessagesRead(ctx, job.ID, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &domain.ReadResult{JobID: job.ID, Marked: n}, nil
}

// Wait blocks until scheduled replies have been delivered or dropped.
func (s *ChatService) Wait() { s.pending.Wait() }

// Close drops replies that have not fired yet.
func (s *ChatService) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.pending.Wait()
}

// ============================================================
// Internal helpers
// ============================================================

func (s *ChatService) participantJob(ctx context.Context, actor maindomain.Principal, jobID string) (*maindomain.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Involves(actor.UserID) {
		return nil, &maindomain.ErrForbidden{Action: "join this job conversation"}
	}
	return job, nil
}

func (s *ChatService) deliver(ctx context.Context, job *maindomain.Job, from, to, text string) (*maindomain.Message, error) {
	msg := maindomain.Message{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		SenderID:    from,
		RecipientID: to,
		Message:     text,
		Timestamp:   s.now(),
	}
	if err := s.store.AddMessage(ctx, &msg); err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.Publish(maindomain.Event{
			Type:      maindomain.EventMessageSent,
			Data:      msg,
			Timestamp: msg.Timestamp,
			Audience:  []string{from, to},
		})
	}
	if s.deliverer != nil {
		s.deliverer.SendMessage(ctx, from, to, text)
	}
	return &msg, nil
}

func (s *ChatService) scheduleReply(strategy ReplyStrategy, rc *domain.ReplyContext) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		t := time.NewTimer(s.replyDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-s.done:
			return
		}

		ctx := context.Background()
		text, err := strategy.Reply(ctx, rc)
		if err != nil || text == "" {
			if err != nil {
				s.logger.Warn("reply strategy failed", zap.String("job_id", rc.Job.ID), zap.Error(err))
			}
			return
		}
		if _, err := s.deliver(ctx, &rc.Job, rc.Message.RecipientID, rc.Message.SenderID, text); err != nil {
			s.logger.Error("failed to deliver reply", zap.String("job_id", rc.Job.ID), zap.Error(err))
		}
	}()
}

func (s *ChatService) localeOf(ctx context.Context, userID string) maindomain.Locale {
	if u, err := s.store.GetUser(ctx, userID); err == nil {
		return u.Language
	}
	return maindomain.LocaleEN
}
