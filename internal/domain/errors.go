package domain

import (
	"fmt"
	"strings"
)

// Typed errors returned by the services. The HTTP layer picks the status
// code with errors.As, so wrap them with %w instead of flattening.

// ============================================================
// Lookup and input
// ============================================================

// ErrNotFound reports an unknown id. ID may be empty for searches.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return "no " + e.Resource + " found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ErrValidation rejects a request field.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" || strings.Contains(e.Message, e.Field) {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ============================================================
// Identity and permissions
// ============================================================

// ErrUnauthorized means the caller could not be identified: bad
// credentials, a missing or expired token, a revoked session.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// ErrForbidden means the caller is known but may not do Action.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return "not allowed to " + e.Action
}

// ============================================================
// State
// ============================================================

// ErrConflict reports a clash with existing state, e.g. a taken email.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string { return e.Message }

// ErrDuplicate reports an operation that already happened once.
type ErrDuplicate struct {
	Key string
}

func (e *ErrDuplicate) Error() string {
	return "already processed: " + e.Key
}

// ErrInvalidTransition is a job status change the lifecycle forbids.
type ErrInvalidTransition struct {
	JobID string
	From  JobStatus
	To    JobStatus
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("job %s cannot move from %s to %s", e.JobID, e.From, e.To)
}

// ErrInsufficientFunds is returned when a wallet debit exceeds the balance.
type ErrInsufficientFunds struct {
	Available float64
	Required  float64
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("wallet balance %.2f is below the required %.2f", e.Available, e.Required)
}

// ============================================================
// Dependencies (Twilio, Redis)
// ============================================================

// ErrExternalService wraps a failed call to a dependency.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error { return e.Err }

// ErrCircuitOpen is returned without calling the dependency while its
// breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return e.Service + " temporarily unavailable (circuit open)"
}

// ErrTimeout reports a dependency call that ran past its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return e.Operation + " timed out"
}
