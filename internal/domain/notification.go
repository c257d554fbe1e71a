package domain

import "time"

// ============================================================
// Notifications & Messages
// ============================================================

// NotificationType categorizes a notification for the UI icon.
type NotificationType string

const (
	NotifyJob       NotificationType = "job"
	NotifyPayment   NotificationType = "payment"
	NotifySystem    NotificationType = "system"
	NotifyPromotion NotificationType = "promotion"
	NotifyMessage   NotificationType = "message"
)

// Valid reports whether t is a known type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotifyJob, NotifyPayment, NotifySystem, NotifyPromotion, NotifyMessage:
		return true
	}
	return false
}

// Notification is a message addressed to a single user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	Timestamp time.Time        `json:"timestamp"`
}

// NotificationInput is the body of POST /v1/notifications.
type NotificationInput struct {
	UserID  string           `json:"userId"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

// Validate checks target, title and type.
func (in NotificationInput) Validate() error {
	if in.UserID == "" {
		return &ErrValidation{Field: "userId", Message: "userId is required"}
	}
	if in.Title == "" {
		return &ErrValidation{Field: "title", Message: "title is required"}
	}
	if in.Type != "" && !in.Type.Valid() {
		return &ErrValidation{Field: "type", Message: "unknown notification type"}
	}
	return nil
}

// NotificationList is the response of GET /v1/notifications.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

// Message is one chat line inside a job conversation.
type Message struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId,omitempty"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	IsRead      bool      `json:"isRead"`
}

// MessageInput is the body for sending a chat message.
type MessageInput struct {
	RecipientID string `json:"recipientId,omitempty"`
	Message     string `json:"message"`
}

// MessagePreviewLen is how much of a chat message appears in its notification.
const MessagePreviewLen = 50

// Preview truncates text for display in a notification body.
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= MessagePreviewLen {
		return text
	}
	return string(r[:MessagePreviewLen]) + "..."
}
