package domain

import "time"

// ConnectionState is the simulated link state of a user's live channel.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)

// RealtimeStatus is returned by GET /v1/realtime/status.
type RealtimeStatus struct {
	UserID      string          `json:"userId"`
	State       ConnectionState `json:"state"`
	IsConnected bool            `json:"isConnected"`
	OnlineUsers int             `json:"onlineUsers"`
	ConnectedAt *time.Time      `json:"connectedAt,omitempty"`
}

// ConnectionChange is the payload of a CONNECTION_STATE event.
type ConnectionChange struct {
	UserID string          `json:"userId"`
	State  ConnectionState `json:"state"`
}

// RealtimeMessageRequest is the body of POST /v1/realtime/messages.
type RealtimeMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

// JobStatusRequest is the body of PUT /v1/jobs/{id}/status.
type JobStatusRequest struct {
	Status JobStatus `json:"status"`
}

// AvailabilityRequest is the body of PUT /v1/electricians/{id}/availability.
type AvailabilityRequest struct {
	Availability bool `json:"availability"`
}

// Dashboard is the per-role landing summary.
type Dashboard struct {
	User          User                `json:"user"`
	Jobs          []Job               `json:"jobs"`
	ActiveJobs    int                 `json:"activeJobs"`
	UnreadCount   int                 `json:"unreadNotifications"`
	Notifications []Notification      `json:"recentNotifications"`
	Wallet        *Wallet             `json:"wallet,omitempty"`
	Electrician   *ElectricianProfile `json:"electrician,omitempty"`
	Stats         *Stats              `json:"stats,omitempty"`
	Realtime      *RealtimeStatus     `json:"realtime,omitempty"`
}
