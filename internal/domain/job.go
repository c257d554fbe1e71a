package domain

import (
	"math"
	"time"
)

// ============================================================
// Jobs: booking lifecycle
// ============================================================

// JobStatus is a step of the linear job lifecycle.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobAccepted   JobStatus = "accepted"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobPending, JobAccepted, JobInProgress, JobCompleted, JobCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobCancelled
}

// Active reports whether the job still needs work.
func (s JobStatus) Active() bool {
	return s == JobPending || s == JobAccepted || s == JobInProgress
}

// NextStatus returns the forward step after s, or "" when s has none.
func NextStatus(s JobStatus) JobStatus {
	switch s {
	case JobPending:
		return JobAccepted
	case JobAccepted:
		return JobInProgress
	case JobInProgress:
		return JobCompleted
	}
	return ""
}

// CanTransition reports whether from -> to is allowed: one step forward, or
// cancellation before work has started.
func CanTransition(from, to JobStatus) bool {
	if to == JobCancelled {
		return from == JobPending || from == JobAccepted
	}
	return to != "" && NextStatus(from) == to
}

// Urgency affects the booking surcharge.
type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// Surcharge returns the flat fee added for the urgency level.
func (u Urgency) Surcharge() float64 {
	switch u {
	case UrgencyUrgent:
		return 100
	case UrgencyEmergency:
		return 200
	}
	return 0
}

// PerKmRate is charged for every km between electrician and customer.
const PerKmRate = 10.0

// Job is one booked engagement between a customer and an electrician.
type Job struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customerId"`
	ElectricianID   string     `json:"electricianId"`
	ServiceID       string     `json:"serviceId"`
	Status          JobStatus  `json:"status"`
	Description     string     `json:"description"`
	Address         string     `json:"address"`
	Location        Location   `json:"location"`
	Distance        float64    `json:"distance"`
	TotalPrice      float64    `json:"totalPrice"`
	ScheduledDate   string     `json:"scheduledDate"`
	ScheduledTime   string     `json:"scheduledTime,omitempty"`
	Urgency         Urgency    `json:"urgency"`
	IsEmergency     bool       `json:"isEmergency"`
	AreaSqFt        float64    `json:"areaSqFt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	AcceptedAt      *time.Time `json:"acceptedAt,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CancelledBy     string     `json:"cancelledBy,omitempty"`
	CompletedImages []string   `json:"completedImages,omitempty"`
	Rating          int        `json:"rating,omitempty"`
	Review          string     `json:"review,omitempty"`
	Paid            bool       `json:"paid"`
}

// Involves reports whether userID is the customer or the electrician of the job.
func (j *Job) Involves(userID string) bool {
	return j.CustomerID == userID || j.ElectricianID == userID
}

// ApplyTransition moves the job to status `to`, stamping the matching
// timestamp. It fails without touching the job when the lifecycle forbids it.
func ApplyTransition(j *Job, to JobStatus, now time.Time) error {
	if !CanTransition(j.Status, to) {
		return &ErrInvalidTransition{JobID: j.ID, From: j.Status, To: to}
	}
	j.Status = to
	switch to {
	case JobAccepted:
		j.AcceptedAt = &now
	case JobInProgress:
		j.StartedAt = &now
	case JobCompleted:
		j.CompletedAt = &now
	}
	return nil
}

// JobInput is the customer booking request.
type JobInput struct {
	ElectricianID string   `json:"electricianId"`
	ServiceID     string   `json:"serviceId"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	Location      Location `json:"location"`
	Distance      *float64 `json:"distance,omitempty"`
	ScheduledDate string   `json:"scheduledDate"`
	ScheduledTime string   `json:"scheduledTime,omitempty"`
	Urgency       Urgency  `json:"urgency,omitempty"`
	AreaSqFt      float64  `json:"areaSqFt,omitempty"`
}

// Validate checks the booking form fields.
func (in JobInput) Validate() error {
	if in.ElectricianID == "" {
		return &ErrValidation{Field: "electricianId", Message: "electricianId is required"}
	}
	if in.ServiceID == "" {
		return &ErrValidation{Field: "serviceId", Message: "serviceId is required"}
	}
	if in.Address == "" {
		return &ErrValidation{Field: "address", Message: "address is required"}
	}
	if in.ScheduledDate == "" {
		return &ErrValidation{Field: "scheduledDate", Message: "scheduledDate is required"}
	}
	switch in.Urgency {
	case "", UrgencyNormal, UrgencyUrgent, UrgencyEmergency:
	default:
		return &ErrValidation{Field: "urgency", Message: "urgency must be normal, urgent or emergency"}
	}
	if in.AreaSqFt < 0 {
		return &ErrValidation{Field: "areaSqFt", Message: "areaSqFt cannot be negative"}
	}
	return nil
}

// Quote is the price breakdown of a booking.
type Quote struct {
	BaseCharge      float64 `json:"baseCharge"`
	UrgencyCharge   float64 `json:"urgencyCharge"`
	DistanceCharge  float64 `json:"distanceCharge"`
	DistanceKm      float64 `json:"distance"`
	Total           float64 `json:"totalAmount"`
	WholeHouseBasis string  `json:"wholeHouseBasis,omitempty"` // per_sq_ft | flat_rate
}

// QuoteJob prices a booking for a service at a given distance.
func QuoteJob(svc *Service, urgency Urgency, distanceKm, areaSqFt float64) Quote {
	q := Quote{
		BaseCharge:    svc.BasePrice,
		UrgencyCharge: urgency.Surcharge(),
		DistanceKm:    round2(distanceKm),
	}
	if w := svc.WholeHousePricing; w != nil && w.Enabled && areaSqFt > 0 {
		switch {
		case w.PerSquareFoot != nil:
			q.BaseCharge = *w.PerSquareFoot * areaSqFt
			q.WholeHouseBasis = "per_sq_ft"
		case w.FlatRate != nil:
			q.BaseCharge = *w.FlatRate
			q.WholeHouseBasis = "flat_rate"
		}
	}
	q.DistanceCharge = round2(q.DistanceKm * PerKmRate)
	q.Total = round2(q.BaseCharge + q.UrgencyCharge + q.DistanceCharge)
	return q
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CompletionInput carries the optional data recorded when a job finishes.
type CompletionInput struct {
	Images []string `json:"completedImages,omitempty"`
	Rating int      `json:"rating,omitempty"`
	Review string   `json:"review,omitempty"`
}

// JobFilter narrows job listings.
type JobFilter struct {
	CustomerID    string
	ElectricianID string
	Status        JobStatus
}

// Matches reports whether j satisfies the filter.
func (f JobFilter) Matches(j *Job) bool {
	if f.CustomerID != "" && j.CustomerID != f.CustomerID {
		return false
	}
	if f.ElectricianID != "" && j.ElectricianID != f.ElectricianID {
		return false
	}
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	return true
}
