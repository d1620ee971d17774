package class

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create and Update serialize on the trainer and reject schedule overlaps.
	Create(ctx context.Context, c *Class) (*Class, error)
	Update(ctx context.Context, c *Class) (*Class, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Class, error)
	GetWithAvailability(ctx context.Context, id uuid.UUID) (*ClassWithAvailability, error)
	List(ctx context.Context, filter ListFilter) ([]ClassWithAvailability, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Book(ctx context.Context, userID, classID uuid.UUID) (*Booking, error)
	CancelBooking(ctx context.Context, userID, classID uuid.UUID) error
	SetAttendance(ctx context.Context, bookingID uuid.UUID, attended bool) (*Booking, error)
	ListBookings(ctx context.Context, classID uuid.UUID) ([]BookingWithDetails, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingWithDetails, error)

	// StatsByTrainer covers classes starting in [from, to].
	StatsByTrainer(ctx context.Context, from, to time.Time) ([]TrainerStats, error)
}
