package domain

import "time"

// ============================================================
// Sync events
// ============================================================

// EventType names a change broadcast on the event bus.
type EventType string

const (
	EventUserAdded           EventType = "USER_ADDED"
	EventUserUpdated         EventType = "USER_UPDATED"
	EventElectricianApplied  EventType = "ELECTRICIAN_APPLIED"
	EventElectricianApproved EventType = "ELECTRICIAN_APPROVED"
	EventElectricianRejected EventType = "ELECTRICIAN_REJECTED"
	EventElectricianUpdated  EventType = "ELECTRICIAN_UPDATED"
	EventServiceAdded        EventType = "SERVICE_ADDED"
	EventServiceApproved     EventType = "SERVICE_APPROVED"
	EventServiceRejected     EventType = "SERVICE_REJECTED"
	EventJobCreated          EventType = "JOB_CREATED"
	EventJobUpdated          EventType = "JOB_UPDATED"
	EventJobCompleted        EventType = "JOB_COMPLETED"
	EventNotificationAdded   EventType = "NOTIFICATION_ADDED"
	EventNotificationRead    EventType = "NOTIFICATION_READ"
	EventMessageSent         EventType = "MESSAGE_SENT"
	EventWalletUpdated       EventType = "WALLET_UPDATED"
	EventPaymentCompleted    EventType = "PAYMENT_COMPLETED"
	EventConnectionState     EventType = "CONNECTION_STATE"
	EventForceUpdate         EventType = "FORCE_UPDATE"
)

// Event carries a changed record to interested subscribers. Admins see
// every event; everybody else only sees events whose Audience names them.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Audience  []string  `json:"-"`
	Broadcast bool      `json:"-"`
}

// Visible reports whether a subscriber with userID and role may receive e.
func (e *Event) Visible(userID string, role Role) bool {
	if e.Broadcast || role == RoleAdmin {
		return true
	}
	for _, id := range e.Audience {
		if id == userID {
			return true
		}
	}
	return false
}

// SyncStatus is returned by GET /v1/sync/status.
type SyncStatus struct {
	LastUpdate  *time.Time `json:"lastUpdate"`
	UpdateCount int64      `json:"updateCount"`
	IsLive      bool       `json:"isLive"`
	Subscribers int        `json:"subscribers"`
	Dropped     int64      `json:"dropped"`
}
