package class

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, c *Class) (*Class, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, c *Class) (*Class, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Class, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockRepository) GetWithAvailability(ctx context.Context, id uuid.UUID) (*ClassWithAvailability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassWithAvailability), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]ClassWithAvailability, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClassWithAvailability), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Book(ctx context.Context, userID, classID uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, userID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) CancelBooking(ctx context.Context, userID, classID uuid.UUID) error {
	return m.Called(ctx, userID, classID).Error(0)
}

func (m *MockRepository) SetAttendance(ctx context.Context, bookingID uuid.UUID, attended bool) (*Booking, error) {
	args := m.Called(ctx, bookingID, attended)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) ListBookings(ctx context.Context, classID uuid.UUID) ([]BookingWithDetails, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithDetails), args.Error(1)
}

func (m *MockRepository) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingWithDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithDetails), args.Error(1)
}

func (m *MockRepository) StatsByTrainer(ctx context.Context, from, to time.Time) ([]TrainerStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TrainerStats), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendBookingConfirmation(ctx context.Context, email, name, className string, start time.Time) error {
	return m.Called(ctx, email, name, className, start).Error(0)
}

func (m *mockNotifier) SendBookingCancellation(ctx context.Context, email, name, className string, start time.Time) error {
	return m.Called(ctx, email, name, className, start).Error(0)
}
