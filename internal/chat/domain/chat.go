// Package domain: chat.go defines the types of the job conversation:
// GET/POST /v1/jobs/{id}/messages and POST /v1/jobs/{id}/messages/read.
//
// Every conversation belongs to a job and has exactly two participants,
// the customer and the electrician of that job. Admins can read the jobs
// but do not take part in the conversation.
package domain

import (
	maindomain "github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// MaxMessageLen caps a single chat line, in runes.
const MaxMessageLen = 1000

// ============================================================
// Chat: Request/Response between the caller and the BFA
// ============================================================

// SendRequest is the body of POST /v1/jobs/{id}/messages.
type SendRequest struct {
	Message string `json:"message"`
}

// Conversation is the response of GET /v1/jobs/{id}/messages.
type Conversation struct {
	JobID         string               `json:"jobId"`
	CustomerID    string               `json:"customerId"`
	ElectricianID string               `json:"electricianId"`
	Messages      []maindomain.Message `json:"messages"`
	UnreadCount   int                  `json:"unreadCount"`
}

// ReadResult is the response of POST /v1/jobs/{id}/messages/read.
type ReadResult struct {
	JobID  string `json:"jobId"`
	Marked int    `json:"marked"`
}

// ============================================================
// ReplyContext: what a reply strategy sees
// ============================================================

// ReplyContext carries one delivered message to the reply strategies.
// Locale is the language of the message author, the one who reads the
// reply.
type ReplyContext struct {
	Job     maindomain.Job
	Message maindomain.Message
	Locale  maindomain.Locale
}
