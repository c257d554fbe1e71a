package domain

import (
	"context"
	"time"
)

// ============================================================
// Auth: Request / Response types
// ============================================================

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Password       string  `json:"password"`
	Role           Role    `json:"role"`
	Language       Locale  `json:"language"`
	Age            int     `json:"age,omitempty"`
	Experience     int     `json:"experience,omitempty"`
	Specialization string  `json:"specialization,omitempty"`
	Address        string  `json:"location,omitempty"`
	Lat            float64 `json:"lat,omitempty"`
	Lng            float64 `json:"lng,omitempty"`
}

// Validate checks the fields common to every signup.
func (r RegisterRequest) Validate() error {
	if r.Name == "" {
		return &ErrValidation{Field: "name", Message: "name is required"}
	}
	if r.Email == "" {
		return &ErrValidation{Field: "email", Message: "email is required"}
	}
	if r.Phone == "" {
		return &ErrValidation{Field: "phone", Message: "phone is required"}
	}
	switch r.Role {
	case RoleCustomer, RoleElectrician:
	case RoleAdmin:
		return &ErrForbidden{Action: "self-register as admin"}
	default:
		return &ErrValidation{Field: "role", Message: "role must be customer or electrician"}
	}
	return nil
}

// Application converts an electrician signup into a pending application.
func (r RegisterRequest) Application() ElectricianApplication {
	return ElectricianApplication{
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		Language:       r.Language,
		Age:            r.Age,
		Experience:     r.Experience,
		Specialization: r.Specialization,
		Address:        r.Address,
		Lat:            r.Lat,
		Lng:            r.Lng,
	}
}

// RegisterResponse is the body for 201 from POST /v1/auth/register.
// Customers are signed in right away; electricians wait for approval.
type RegisterResponse struct {
	UserID  string         `json:"userId"`
	Status  string         `json:"status"` // active | pending_approval
	Message string         `json:"message"`
	Session *LoginResponse `json:"session,omitempty"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	User         User   `json:"user"`
}

// RefreshRequest is the body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Credential is the stored password state of a user.
type Credential struct {
	UserID         string     `json:"user_id"`
	PasswordHash   string     `json:"password_hash"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// Session is one signed-in device. The refresh token itself is never
// stored, only its hash.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	User        User      `json:"user"`
	RefreshHash string    `json:"refresh_hash"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its lifetime.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID    string
	SessionID string
	Role      Role
}

type principalKey struct{}

// ContextWithPrincipal attaches the authenticated caller to ctx.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller attached by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ChangePasswordRequest is the body of POST /v1/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
