package plan

import (
	"time"

	"github.com/google/uuid"
)

// MembershipPlan is a sellable membership product. Memberships snapshot the
// plan's duration at creation and renewal time.
type MembershipPlan struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type CreatePlanRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	DurationDays int    `json:"duration_days" binding:"required,min=1"`
	PriceCents   int64  `json:"price_cents" binding:"min=0"`
	Active       *bool  `json:"active"`
}

type UpdatePlanRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1"`
	Description  *string `json:"description"`
	DurationDays *int    `json:"duration_days" binding:"omitempty,min=1"`
	PriceCents   *int64  `json:"price_cents" binding:"omitempty,min=0"`
	Active       *bool   `json:"active"`
}
