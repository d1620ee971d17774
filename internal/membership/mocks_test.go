package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bukohub/gym-fusion-training-sub001/internal/plan"
	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, ms *Membership) (*Membership, error) {
	args := m.Called(ctx, ms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]Membership, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Membership), args.Error(1)
}

func (m *MockRepository) UpdatePeriod(ctx context.Context, id uuid.UUID, start, end time.Time, status Status) (*Membership, error) {
	args := m.Called(ctx, id, start, end, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Membership, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListExpiring(ctx context.Context, from, to time.Time) ([]Membership, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Membership), args.Error(1)
}

func (m *MockRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[Status]int), args.Error(1)
}

func (m *MockRepository) CountValidAt(ctx context.Context, at time.Time) (int, error) {
	args := m.Called(ctx, at)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CountExpiring(ctx context.Context, from, to time.Time) (int, error) {
	args := m.Called(ctx, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CreateValidationLog(ctx context.Context, l *ValidationLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockRepository) ListValidationLogs(ctx context.Context, filter LogFilter) ([]ValidationLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ValidationLog), args.Error(1)
}

type mockPlans struct {
	mock.Mock
}

func (m *mockPlans) GetByID(ctx context.Context, id uuid.UUID) (*plan.MembershipPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.MembershipPlan), args.Error(1)
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

func (m *mockUsers) FindByCedula(ctx context.Context, cedula string) (*user.User, error) {
	args := m.Called(ctx, cedula)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUsers) FindByHoller(ctx context.Context, holler string) (*user.User, error) {
	args := m.Called(ctx, holler)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendMembershipRenewal(ctx context.Context, email, name, planName string, endDate time.Time) error {
	return m.Called(ctx, email, name, planName, endDate).Error(0)
}

func (m *mockNotifier) SendExpiryReminder(ctx context.Context, email, name string, endDate time.Time) error {
	return m.Called(ctx, email, name, endDate).Error(0)
}
