package domain

import "time"

// ============================================================
// Services (catalog)
// ============================================================

// ServiceStatus tracks whether a catalog entry has been approved.
type ServiceStatus string

const (
	ServicePending ServiceStatus = "pending"
	ServiceActive  ServiceStatus = "active"
)

// WholeHousePricing is an alternate pricing policy for whole-house work:
// a per-area rate, a flat rate, or both. Unset rates stay nil.
type WholeHousePricing struct {
	Enabled       bool     `json:"enabled"`
	PerSquareFoot *float64 `json:"perSquareFoot,omitempty"`
	FlatRate      *float64 `json:"flatRate,omitempty"`
}

// Service is an offering an electrician proposes and an admin approves.
type Service struct {
	ID                string             `json:"id"`
	OwnerID           string             `json:"ownerId,omitempty"`
	Name              string             `json:"name"`
	Category          string             `json:"category"`
	BasePrice         float64            `json:"basePrice"`
	Description       string             `json:"description"`
	WholeHousePricing *WholeHousePricing `json:"wholeHousePricing,omitempty"`
	Status            ServiceStatus      `json:"status"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// ServiceInput is the body of POST /v1/services.
type ServiceInput struct {
	Name              string             `json:"name"`
	Category          string             `json:"category"`
	BasePrice         float64            `json:"basePrice"`
	Description       string             `json:"description"`
	WholeHousePricing *WholeHousePricing `json:"wholeHousePricing,omitempty"`
}

// Validate checks the required fields and the whole-house pricing policy.
func (in ServiceInput) Validate() error {
	if in.Name == "" {
		return &ErrValidation{Field: "name", Message: "name is required"}
	}
	if in.Category == "" {
		return &ErrValidation{Field: "category", Message: "category is required"}
	}
	if in.BasePrice <= 0 {
		return &ErrValidation{Field: "basePrice", Message: "basePrice must be greater than zero"}
	}
	if w := in.WholeHousePricing; w != nil && w.Enabled {
		if w.PerSquareFoot == nil && w.FlatRate == nil {
			return &ErrValidation{Field: "wholeHousePricing", Message: "per square foot rate or flat rate is required"}
		}
		if (w.PerSquareFoot != nil && *w.PerSquareFoot <= 0) || (w.FlatRate != nil && *w.FlatRate <= 0) {
			return &ErrValidation{Field: "wholeHousePricing", Message: "rates must be greater than zero"}
		}
	}
	return nil
}
