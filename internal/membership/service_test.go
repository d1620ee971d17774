package membership

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/plan"
	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

var (
	fixedNow     = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	receptionist = auth.Actor{UserID: uuid.New(), Role: auth.RoleReceptionist}
	trainer      = auth.Actor{UserID: uuid.New(), Role: auth.RoleTrainer}
)

type fixture struct {
	repo     *MockRepository
	plans    *mockPlans
	users    *mockUsers
	notifier *mockNotifier
	svc      *service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockRepository),
		plans:    new(mockPlans),
		users:    new(mockUsers),
		notifier: new(mockNotifier),
	}
	f.svc = &service{
		repo:     f.repo,
		plans:    f.plans,
		users:    f.users,
		notifier: f.notifier,
		now:      func() time.Time { return fixedNow },
	}
	return f
}

func TestEvaluate(t *testing.T) {
	start := fixedNow.AddDate(0, 0, -10)
	end := fixedNow.AddDate(0, 0, 20)

	tests := []struct {
		name   string
		m      Membership
		valid  bool
		reason string
	}{
		{"active within period", Membership{Status: StatusActive, StartDate: start, EndDate: end}, true, ReasonValid},
		{"active on end instant", Membership{Status: StatusActive, StartDate: start, EndDate: fixedNow}, true, ReasonValid},
		{"active but past end", Membership{Status: StatusActive, StartDate: start, EndDate: fixedNow.Add(-time.Second)}, false, ReasonExpired},
		{"active not started", Membership{Status: StatusActive, StartDate: fixedNow.Add(time.Hour), EndDate: end}, false, ReasonNotStarted},
		{"suspended within period", Membership{Status: StatusSuspended, StartDate: start, EndDate: end}, false, ReasonSuspended},
		{"stored expired", Membership{Status: StatusExpired, StartDate: start, EndDate: end}, false, ReasonExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, reason := Evaluate(&tt.m, fixedNow)
			assert.Equal(t, tt.valid, valid)
			assert.Equal(t, tt.reason, reason)
			assert.Equal(t, tt.valid, IsCurrentlyValid(&tt.m, fixedNow))
		})
	}
}

func TestInExpiryWindow(t *testing.T) {
	exactly7 := &Membership{Status: StatusActive, EndDate: fixedNow.AddDate(0, 0, 7)}
	eight := &Membership{Status: StatusActive, EndDate: fixedNow.AddDate(0, 0, 8)}
	past := &Membership{Status: StatusActive, EndDate: fixedNow.Add(-time.Minute)}
	suspended := &Membership{Status: StatusSuspended, EndDate: fixedNow.AddDate(0, 0, 3)}

	assert.True(t, InExpiryWindow(exactly7, fixedNow, 7))
	assert.False(t, InExpiryWindow(eight, fixedNow, 7))
	assert.False(t, InExpiryWindow(past, fixedNow, 7))
	assert.False(t, InExpiryWindow(suspended, fixedNow, 7))
	assert.True(t, InExpiryWindow(&Membership{Status: StatusActive, EndDate: fixedNow}, fixedNow, 0))
}

func TestService_CreateComputesEndDate(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	planID := uuid.New()
	start := time.Date(2025, 1, 31, 9, 30, 0, 0, time.UTC)

	f.users.On("FindByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
	f.plans.On("GetByID", mock.Anything, planID).Return(&plan.MembershipPlan{ID: planID, DurationDays: 30, Active: true}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(m *Membership) bool {
		return m.StartDate.Equal(start) &&
			m.EndDate.Equal(time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)) &&
			m.Status == StatusActive
	})).Return(&Membership{ID: uuid.New(), UserID: userID, PlanID: planID, StartDate: start, EndDate: start.AddDate(0, 0, 30), Status: StatusActive}, nil)

	m, err := f.svc.Create(context.Background(), receptionist, CreateMembershipRequest{UserID: userID, PlanID: planID, StartDate: &start})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, m.Status)
	f.repo.AssertExpectations(t)
}

func TestService_CreateDefaultsStartToNow(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	planID := uuid.New()

	f.users.On("FindByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
	f.plans.On("GetByID", mock.Anything, planID).Return(&plan.MembershipPlan{ID: planID, DurationDays: 1, Active: true}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(m *Membership) bool {
		return m.StartDate.Equal(fixedNow) && m.EndDate.Equal(fixedNow.Add(24*time.Hour))
	})).Return(&Membership{ID: uuid.New()}, nil)

	_, err := f.svc.Create(context.Background(), receptionist, CreateMembershipRequest{UserID: userID, PlanID: planID})
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestService_CreateErrors(t *testing.T) {
	userID := uuid.New()
	planID := uuid.New()

	t.Run("unknown plan", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
		f.plans.On("GetByID", mock.Anything, planID).Return(nil, plan.ErrPlanNotFound)

		_, err := f.svc.Create(context.Background(), receptionist, CreateMembershipRequest{UserID: userID, PlanID: planID})
		assert.ErrorIs(t, err, plan.ErrPlanNotFound)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(nil, user.ErrUserNotFound)

		_, err := f.svc.Create(context.Background(), receptionist, CreateMembershipRequest{UserID: userID, PlanID: planID})
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("inactive plan", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
		f.plans.On("GetByID", mock.Anything, planID).Return(&plan.MembershipPlan{ID: planID, DurationDays: 30}, nil)

		_, err := f.svc.Create(context.Background(), receptionist, CreateMembershipRequest{UserID: userID, PlanID: planID})
		assert.ErrorIs(t, err, ErrPlanInactive)
	})

	t.Run("trainer forbidden", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(context.Background(), trainer, CreateMembershipRequest{UserID: userID, PlanID: planID})
		assert.ErrorIs(t, err, auth.ErrForbidden)
	})
}

func TestService_RenewAlwaysActivates(t *testing.T) {
	for _, prior := range []Status{StatusActive, StatusSuspended, StatusExpired} {
		t.Run(string(prior), func(t *testing.T) {
			f := newFixture()
			id := uuid.New()
			userID := uuid.New()
			planID := uuid.New()
			end := fixedNow.AddDate(0, 0, 90)

			f.repo.On("GetByID", mock.Anything, id).Return(&Membership{ID: id, UserID: userID, PlanID: planID, Status: prior}, nil)
			f.plans.On("GetByID", mock.Anything, planID).Return(&plan.MembershipPlan{ID: planID, Name: "Quarter", DurationDays: 90}, nil)
			f.repo.On("UpdatePeriod", mock.Anything, id, fixedNow, end, StatusActive).
				Return(&Membership{ID: id, UserID: userID, PlanID: planID, StartDate: fixedNow, EndDate: end, Status: StatusActive}, nil)
			f.users.On("FindByID", mock.Anything, userID).Return(&user.User{ID: userID, Email: "m@example.com", Name: "M"}, nil)
			f.notifier.On("SendMembershipRenewal", mock.Anything, "m@example.com", "M", "Quarter", end).Return(nil)

			m, err := f.svc.Renew(context.Background(), receptionist, id)
			require.NoError(t, err)
			assert.Equal(t, StatusActive, m.Status)
			f.repo.AssertExpectations(t)
			f.notifier.AssertExpectations(t)
		})
	}
}

func TestService_RenewNotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, ErrMembershipNotFound)

	_, err := f.svc.Renew(context.Background(), receptionist, id)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestService_RenewSucceedsWhenNotifierFails(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	userID := uuid.New()
	planID := uuid.New()

	f.repo.On("GetByID", mock.Anything, id).Return(&Membership{ID: id, UserID: userID, PlanID: planID}, nil)
	f.plans.On("GetByID", mock.Anything, planID).Return(&plan.MembershipPlan{ID: planID, DurationDays: 30}, nil)
	f.repo.On("UpdatePeriod", mock.Anything, id, mock.Anything, mock.Anything, StatusActive).
		Return(&Membership{ID: id, UserID: userID, Status: StatusActive}, nil)
	f.users.On("FindByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
	f.notifier.On("SendMembershipRenewal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	_, err := f.svc.Renew(context.Background(), receptionist, id)
	assert.NoError(t, err)
}

func TestService_SuspendAndActivate(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.repo.On("UpdateStatus", mock.Anything, id, StatusSuspended).Return(&Membership{ID: id, Status: StatusSuspended}, nil)
	f.repo.On("UpdateStatus", mock.Anything, id, StatusActive).Return(&Membership{ID: id, Status: StatusActive}, nil)

	m, err := f.svc.Suspend(context.Background(), receptionist, id)
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, m.Status)

	m, err = f.svc.Activate(context.Background(), receptionist, id)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, m.Status)

	f.repo.AssertNotCalled(t, "UpdatePeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ExpiringWindow(t *testing.T) {
	f := newFixture()
	in := Membership{ID: uuid.New(), Status: StatusActive, EndDate: fixedNow.AddDate(0, 0, 7)}
	out := Membership{ID: uuid.New(), Status: StatusActive, EndDate: fixedNow.AddDate(0, 0, 8)}

	f.repo.On("ListExpiring", mock.Anything, fixedNow, fixedNow.AddDate(0, 0, 7)).Return([]Membership{in, out}, nil)

	memberships, err := f.svc.Expiring(context.Background(), trainer, 7)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, in.ID, memberships[0].ID)
	f.repo.AssertExpectations(t)
}

func TestService_ExpiringRejectsNegativeDays(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Expiring(context.Background(), trainer, -1)
	assert.ErrorIs(t, err, ErrInvalidDays)
}

func TestService_Stats(t *testing.T) {
	f := newFixture()
	f.repo.On("CountByStatus", mock.Anything).Return(map[Status]int{StatusActive: 8, StatusSuspended: 2}, nil)
	f.repo.On("CountValidAt", mock.Anything, fixedNow).Return(6, nil)
	f.repo.On("CountExpiring", mock.Anything, fixedNow, fixedNow.AddDate(0, 0, 7)).Return(3, nil)

	stats, err := f.svc.Stats(context.Background(), trainer)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 10, Active: 8, Suspended: 2, CurrentlyValid: 6, ExpiringThisWeek: 3}, *stats)
}

func expectLog(f *fixture, vtype ValidationType, success bool) {
	f.repo.On("CreateValidationLog", mock.Anything, mock.MatchedBy(func(l *ValidationLog) bool {
		return l.ValidationType == vtype && l.Success == success
	})).Return(nil).Once()
}

func TestService_ValidateByMembershipID(t *testing.T) {
	active := &Membership{ID: uuid.New(), UserID: uuid.New(), Status: StatusActive, StartDate: fixedNow.AddDate(0, 0, -1), EndDate: fixedNow.AddDate(0, 0, 29)}
	suspended := &Membership{ID: uuid.New(), UserID: uuid.New(), Status: StatusSuspended, StartDate: fixedNow.AddDate(0, 0, -1), EndDate: fixedNow.AddDate(0, 0, 29)}
	lapsed := &Membership{ID: uuid.New(), UserID: uuid.New(), Status: StatusActive, StartDate: fixedNow.AddDate(0, 0, -40), EndDate: fixedNow.AddDate(0, 0, -10)}

	tests := []struct {
		name   string
		m      *Membership
		err    error
		valid  bool
		reason string
	}{
		{"valid", active, nil, true, ReasonValid},
		{"suspended", suspended, nil, false, ReasonSuspended},
		{"lapsed", lapsed, nil, false, ReasonExpired},
		{"missing", nil, ErrMembershipNotFound, false, ReasonMembershipNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			id := uuid.New()
			if tt.m != nil {
				id = tt.m.ID
				f.repo.On("GetByID", mock.Anything, id).Return(tt.m, nil)
			} else {
				f.repo.On("GetByID", mock.Anything, id).Return(nil, tt.err)
			}
			expectLog(f, ValidationByMembershipID, tt.valid)

			result, err := f.svc.ValidateByMembershipID(context.Background(), trainer, id.String())
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.reason, result.Reason)
			f.repo.AssertNumberOfCalls(t, "CreateValidationLog", 1)
		})
	}
}

func TestService_ValidateMalformedIDIsLogged(t *testing.T) {
	tests := []struct {
		name     string
		vtype    ValidationType
		validate func(Service) (*ValidationResult, error)
	}{
		{"membership id", ValidationByMembershipID, func(svc Service) (*ValidationResult, error) {
			return svc.ValidateByMembershipID(context.Background(), trainer, "not-a-uuid")
		}},
		{"user id", ValidationByUserID, func(svc Service) (*ValidationResult, error) {
			return svc.ValidateByUserID(context.Background(), trainer, "not-a-uuid")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.On("CreateValidationLog", mock.Anything, mock.MatchedBy(func(l *ValidationLog) bool {
				return l.ValidationType == tt.vtype && !l.Success &&
					l.Identifier == "not-a-uuid" && l.Reason == ReasonInvalidIdentifier
			})).Return(nil).Once()

			result, err := tt.validate(f.svc)
			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.Equal(t, ReasonInvalidIdentifier, result.Reason)
			f.repo.AssertNumberOfCalls(t, "CreateValidationLog", 1)
			f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		})
	}
}

func TestService_ValidateLongCedulaIsClamped(t *testing.T) {
	f := newFixture()
	cedula := strings.Repeat("9", 300)
	f.users.On("FindByCedula", mock.Anything, cedula).Return(nil, user.ErrUserNotFound)
	f.repo.On("CreateValidationLog", mock.Anything, mock.MatchedBy(func(l *ValidationLog) bool {
		return l.Identifier == cedula[:maxIdentifierLength]
	})).Return(nil).Once()

	result, err := f.svc.ValidateByCedula(context.Background(), trainer, cedula)
	require.NoError(t, err)
	assert.Equal(t, ReasonUserNotFound, result.Reason)
	assert.Equal(t, cedula, result.Identifier)
	f.repo.AssertNumberOfCalls(t, "CreateValidationLog", 1)
}

func TestClampIdentifier(t *testing.T) {
	assert.Equal(t, "1712345678", clampIdentifier("1712345678"))

	long := strings.Repeat("ñ", 300)
	clamped := clampIdentifier(long)
	assert.Equal(t, maxIdentifierLength, utf8.RuneCountInString(clamped))
	assert.True(t, utf8.ValidString(clamped))
}

func TestService_ValidateByCedulaPicksLatestValid(t *testing.T) {
	f := newFixture()
	u := &user.User{ID: uuid.New(), Name: "Ana"}
	older := Membership{ID: uuid.New(), UserID: u.ID, Status: StatusActive, StartDate: fixedNow.AddDate(0, 0, -5), EndDate: fixedNow.AddDate(0, 0, 5), CreatedAt: fixedNow.AddDate(0, 0, -5)}
	longer := Membership{ID: uuid.New(), UserID: u.ID, Status: StatusActive, StartDate: fixedNow.AddDate(0, 0, -2), EndDate: fixedNow.AddDate(0, 0, 60), CreatedAt: fixedNow.AddDate(0, 0, -6)}
	suspended := Membership{ID: uuid.New(), UserID: u.ID, Status: StatusSuspended, StartDate: fixedNow, EndDate: fixedNow.AddDate(0, 0, 90), CreatedAt: fixedNow}

	f.users.On("FindByCedula", mock.Anything, "1712345678").Return(u, nil)
	f.repo.On("List", mock.Anything, ListFilter{UserID: &u.ID}).Return([]Membership{suspended, older, longer}, nil)
	f.repo.On("CreateValidationLog", mock.Anything, mock.MatchedBy(func(l *ValidationLog) bool {
		return l.ValidationType == ValidationByCedula && l.Success &&
			l.MembershipID != nil && *l.MembershipID == longer.ID &&
			l.ValidatedBy != nil && *l.ValidatedBy == trainer.UserID &&
			l.Identifier == "1712345678"
	})).Return(nil)

	result, err := f.svc.ValidateByCedula(context.Background(), trainer, "1712345678")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, longer.ID, result.Membership.ID)
	assert.Equal(t, 60, result.DaysRemaining)
	f.repo.AssertExpectations(t)
}

func TestService_ValidateByHollerFailures(t *testing.T) {
	t.Run("unknown holler", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindByHoller", mock.Anything, "ZX-1").Return(nil, user.ErrUserNotFound)
		expectLog(f, ValidationByHoller, false)

		result, err := f.svc.ValidateByHoller(context.Background(), trainer, "ZX-1")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, ReasonUserNotFound, result.Reason)
		f.repo.AssertExpectations(t)
	})

	t.Run("no memberships", func(t *testing.T) {
		f := newFixture()
		u := &user.User{ID: uuid.New()}
		f.users.On("FindByHoller", mock.Anything, "ZX-2").Return(u, nil)
		f.repo.On("List", mock.Anything, ListFilter{UserID: &u.ID}).Return([]Membership{}, nil)
		expectLog(f, ValidationByHoller, false)

		result, err := f.svc.ValidateByHoller(context.Background(), trainer, "ZX-2")
		require.NoError(t, err)
		assert.Equal(t, ReasonNoMemberships, result.Reason)
		f.repo.AssertExpectations(t)
	})

	t.Run("only expired membership reported", func(t *testing.T) {
		f := newFixture()
		u := &user.User{ID: uuid.New()}
		old := Membership{ID: uuid.New(), UserID: u.ID, Status: StatusActive, StartDate: fixedNow.AddDate(0, -2, 0), EndDate: fixedNow.AddDate(0, -1, 0)}
		f.users.On("FindByHoller", mock.Anything, "ZX-3").Return(u, nil)
		f.repo.On("List", mock.Anything, ListFilter{UserID: &u.ID}).Return([]Membership{old}, nil)
		expectLog(f, ValidationByHoller, false)

		result, err := f.svc.ValidateByHoller(context.Background(), trainer, "ZX-3")
		require.NoError(t, err)
		assert.Equal(t, ReasonExpired, result.Reason)
		assert.Equal(t, old.ID, result.Membership.ID)
	})
}

func TestService_ValidateByUserIDForbiddenForClient(t *testing.T) {
	f := newFixture()
	client := auth.Actor{UserID: uuid.New(), Role: auth.RoleClient}

	_, err := f.svc.ValidateByUserID(context.Background(), client, client.UserID.String())
	assert.ErrorIs(t, err, auth.ErrForbidden)
	f.repo.AssertNotCalled(t, "CreateValidationLog", mock.Anything, mock.Anything)
}

func TestService_ListOwnMemberships(t *testing.T) {
	f := newFixture()
	client := auth.Actor{UserID: uuid.New(), Role: auth.RoleClient}
	filter := ListFilter{UserID: &client.UserID}
	f.repo.On("List", mock.Anything, filter).Return([]Membership{{ID: uuid.New()}}, nil)

	memberships, err := f.svc.List(context.Background(), client, filter)
	require.NoError(t, err)
	assert.Len(t, memberships, 1)

	other := uuid.New()
	_, err = f.svc.List(context.Background(), client, ListFilter{UserID: &other})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = f.svc.List(context.Background(), client, ListFilter{})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestService_ListValidationLogsClampsLimit(t *testing.T) {
	f := newFixture()
	f.repo.On("ListValidationLogs", mock.Anything, LogFilter{Limit: maxLogLimit}).Return([]ValidationLog{}, nil)
	f.repo.On("ListValidationLogs", mock.Anything, LogFilter{Limit: defaultLogLimit}).Return([]ValidationLog{}, nil)

	_, err := f.svc.ListValidationLogs(context.Background(), receptionist, LogFilter{Limit: 10000})
	require.NoError(t, err)
	_, err = f.svc.ListValidationLogs(context.Background(), receptionist, LogFilter{})
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestService_SendExpiryReminders(t *testing.T) {
	f := newFixture()
	okUser := &user.User{ID: uuid.New(), Email: "ok@example.com", Name: "Ok"}
	goneUser := uuid.New()
	m1 := Membership{ID: uuid.New(), UserID: okUser.ID, Status: StatusActive, EndDate: fixedNow.AddDate(0, 0, 2)}
	m2 := Membership{ID: uuid.New(), UserID: goneUser, Status: StatusActive, EndDate: fixedNow.AddDate(0, 0, 3)}

	f.repo.On("ListExpiring", mock.Anything, fixedNow, fixedNow.AddDate(0, 0, 7)).Return([]Membership{m1, m2}, nil)
	f.users.On("FindByID", mock.Anything, okUser.ID).Return(okUser, nil)
	f.users.On("FindByID", mock.Anything, goneUser).Return(nil, user.ErrUserNotFound)
	f.notifier.On("SendExpiryReminder", mock.Anything, "ok@example.com", "Ok", m1.EndDate).Return(nil)

	sent, err := f.svc.SendExpiryReminders(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	f.notifier.AssertExpectations(t)
}
