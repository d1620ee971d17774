package membership

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusSuspended Status = "SUSPENDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusSuspended:
		return true
	}
	return false
}

// Membership ties a user to a plan for [StartDate, EndDate]. The stored status
// is an administrative override; expiry is derived from EndDate at read time.
type Membership struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	PlanID    uuid.UUID `db:"plan_id" json:"plan_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type ValidationType string

const (
	ValidationByMembershipID ValidationType = "MEMBERSHIP_ID"
	ValidationByUserID       ValidationType = "USER_ID"
	ValidationByCedula       ValidationType = "CEDULA"
	ValidationByHoller       ValidationType = "HOLLER"
)

// ValidationLog is an append-only record of one validation attempt.
type ValidationLog struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	MembershipID   *uuid.UUID     `db:"membership_id" json:"membership_id,omitempty"`
	UserID         *uuid.UUID     `db:"user_id" json:"user_id,omitempty"`
	ValidationType ValidationType `db:"validation_type" json:"validation_type"`
	Identifier     string         `db:"identifier" json:"identifier"`
	Success        bool           `db:"success" json:"success"`
	Reason         string         `db:"reason" json:"reason"`
	ValidatedBy    *uuid.UUID     `db:"validated_by" json:"validated_by,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

const (
	ReasonValid              = "membership is valid"
	ReasonMembershipNotFound = "membership not found"
	ReasonUserNotFound       = "user not found"
	ReasonNoMemberships      = "user has no memberships"
	ReasonSuspended          = "membership is suspended"
	ReasonExpired            = "membership has expired"
	ReasonNotStarted         = "membership has not started yet"
	ReasonInvalidIdentifier  = "identifier is malformed"
)

type ValidationResult struct {
	Valid         bool           `json:"valid"`
	Reason        string         `json:"reason"`
	Type          ValidationType `json:"validation_type"`
	Identifier    string         `json:"identifier"`
	Membership    *Membership    `json:"membership,omitempty"`
	UserID        *uuid.UUID     `json:"user_id,omitempty"`
	UserName      string         `json:"user_name,omitempty"`
	DaysRemaining int            `json:"days_remaining"`
	ValidatedAt   time.Time      `json:"validated_at"`
}

// Stats counts stored statuses plus two derived figures: memberships valid
// right now and ACTIVE ones ending within the next week.
type Stats struct {
	Total            int `json:"total"`
	Active           int `json:"active"`
	Suspended        int `json:"suspended"`
	Expired          int `json:"expired"`
	CurrentlyValid   int `json:"currently_valid"`
	ExpiringThisWeek int `json:"expiring_this_week"`
}

type CreateMembershipRequest struct {
	UserID    uuid.UUID  `json:"user_id" binding:"required"`
	PlanID    uuid.UUID  `json:"plan_id" binding:"required"`
	StartDate *time.Time `json:"start_date"`
}

type ListFilter struct {
	UserID *uuid.UUID
	Status *Status
}

type LogFilter struct {
	UserID       *uuid.UUID
	MembershipID *uuid.UUID
	Limit        int
}
