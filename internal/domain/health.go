package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz and GET /readyz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
	Error       string `json:"error,omitempty"`
}

// PlatformMetrics is the runtime counter view attached to admin stats.
type PlatformMetrics struct {
	JobTransitions      map[string]float64 `json:"jobTransitions"`
	NotificationsSent   float64            `json:"notificationsSent"`
	EventsPublished     float64            `json:"eventsPublished"`
	EventsDropped       float64            `json:"eventsDropped"`
	SMSSent             float64            `json:"smsSent"`
	SMSFailed           float64            `json:"smsFailed"`
	LoginsSucceeded     float64            `json:"loginsSucceeded"`
	LoginsFailed        float64            `json:"loginsFailed"`
	CacheHitRate        float64            `json:"cacheHitRate"`
	RealtimeConnections float64            `json:"realtimeConnections"`
}

// AdminStats is the response of GET /v1/admin/stats.
type AdminStats struct {
	Stats
	Platform PlatformMetrics `json:"platform"`
}

// ============================================================
// Generic API Response wrappers
// ============================================================

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
