package class

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Class struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	TrainerID   uuid.UUID `db:"trainer_id" json:"trainer_id"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	MaxCapacity int       `db:"max_capacity" json:"max_capacity"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ClassWithAvailability struct {
	Class
	BookedCount int  `db:"booked_count" json:"booked_count"`
	Available   int  `db:"-" json:"available"`
	IsFull      bool `db:"-" json:"is_full"`
}

func (c *ClassWithAvailability) fill() {
	c.Available = c.MaxCapacity - c.BookedCount
	if c.Available < 0 {
		c.Available = 0
	}
	c.IsFull = c.Available == 0
}

type Booking struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ClassID   uuid.UUID `db:"class_id" json:"class_id"`
	Attended  bool      `db:"attended" json:"attended"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type BookingWithDetails struct {
	Booking
	ClassName  string    `db:"class_name" json:"class_name"`
	ClassStart time.Time `db:"class_start" json:"class_start"`
	ClassEnd   time.Time `db:"class_end" json:"class_end"`
	UserName   string    `db:"user_name" json:"user_name"`
	UserEmail  string    `db:"user_email" json:"user_email"`
}

// TrainerStats aggregates the classes a trainer ran in a period.
type TrainerStats struct {
	TrainerID   uuid.UUID `db:"trainer_id" json:"trainer_id"`
	TrainerName string    `db:"trainer_name" json:"trainer_name"`
	Classes     int       `db:"classes" json:"classes"`
	Cancelled   int       `db:"cancelled" json:"cancelled"`
	Bookings    int       `db:"bookings" json:"bookings"`
	Attended    int       `db:"attended" json:"attended"`
}

type CreateClassRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	TrainerID   uuid.UUID `json:"trainer_id" binding:"required"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	MaxCapacity int       `json:"max_capacity" binding:"required,min=1"`
}

type UpdateClassRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1"`
	Description *string    `json:"description"`
	TrainerID   *uuid.UUID `json:"trainer_id"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	MaxCapacity *int       `json:"max_capacity" binding:"omitempty,min=1"`
	Status      *Status    `json:"status" binding:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
}

type BookClassRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

type AttendanceRequest struct {
	Attended *bool `json:"attended" binding:"required"`
}

type ListFilter struct {
	TrainerID *uuid.UUID
	Status    *Status
	From      *time.Time
	To        *time.Time
}
