package payment

import (
	"time"

	"github.com/google/uuid"
)

type Method string

const (
	MethodCash     Method = "CASH"
	MethodCard     Method = "CARD"
	MethodTransfer Method = "TRANSFER"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

type Payment struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	MembershipID  *uuid.UUID `db:"membership_id" json:"membership_id,omitempty"`
	AmountCents   int64      `db:"amount_cents" json:"amount_cents"`
	Method        Method     `db:"method" json:"method"`
	Status        Status     `db:"status" json:"status"`
	TransactionID string     `db:"transaction_id" json:"transaction_id"`
	Notes         string     `db:"notes" json:"notes"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type CreatePaymentRequest struct {
	UserID        uuid.UUID  `json:"user_id" binding:"required"`
	MembershipID  *uuid.UUID `json:"membership_id"`
	AmountCents   int64      `json:"amount_cents" binding:"required,gt=0"`
	Method        Method     `json:"method" binding:"required,oneof=CASH CARD TRANSFER"`
	Status        *Status    `json:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED REFUNDED"`
	TransactionID string     `json:"transaction_id" binding:"omitempty,max=100"`
	Notes         string     `json:"notes"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=PENDING COMPLETED FAILED REFUNDED"`
}

type ListFilter struct {
	UserID       *uuid.UUID
	MembershipID *uuid.UUID
	Status       *Status
	From         *time.Time
	To           *time.Time
}

type MethodTotal struct {
	Method      Method `db:"method" json:"method"`
	Count       int    `db:"count" json:"count"`
	AmountCents int64  `db:"amount_cents" json:"amount_cents"`
}
