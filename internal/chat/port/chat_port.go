// Package port: chat_port.go defines what the ChatService needs from the
// rest of the system. port.MarketStore satisfies ConversationStore and the
// realtime simulator satisfies MessageDeliverer.
package port

import (
	"context"

	maindomain "github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ConversationStore reads jobs and persists chat lines.
type ConversationStore interface {
	GetJob(ctx context.Context, id string) (*maindomain.Job, error)
	GetUser(ctx context.Context, userID string) (*maindomain.User, error)
	AddMessage(ctx context.Context, m *maindomain.Message) error
	ListMessages(ctx context.Context, jobID string) ([]maindomain.Message, error)
	MarkMessagesRead(ctx context.Context, jobID, recipientID string) (int, error)
}

// MessageDeliverer notifies the recipient of a new chat line. Delivery is
// asynchronous and never fails the send.
type MessageDeliverer interface {
	SendMessage(ctx context.Context, fromID, toID, text string)
}
