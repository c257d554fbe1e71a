package domain

import (
	"strings"
	"time"
)

// ============================================================
// Users & Roles
// ============================================================

// Role identifies which dashboard a user operates.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleElectrician Role = "electrician"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleElectrician, RoleAdmin:
		return true
	}
	return false
}

// Locale is the user's preferred UI language.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleHI Locale = "hi"
)

// ParseLocale maps free-form input to a supported locale, defaulting to English.
func ParseLocale(s string) Locale {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "hi") {
		return LocaleHI
	}
	return LocaleEN
}

// User is a signed-in principal of any role.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	IsVerified   bool      `json:"isVerified"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Language     Locale    `json:"language"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserPatch carries the profile fields a user may change about themselves.
// Nil fields are left untouched.
type UserPatch struct {
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Language     *Locale `json:"language,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// Apply shallow-merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Language != nil {
		u.Language = ParseLocale(string(*p.Language))
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
}

// NormalizeEmail lower-cases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
