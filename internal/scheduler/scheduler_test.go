package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReminders struct {
	mock.Mock
}

func (m *mockReminders) SendExpiryReminders(ctx context.Context, days int) (int, error) {
	args := m.Called(ctx, days)
	return args.Int(0), args.Error(1)
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New(new(mockReminders), "every morning", 7)
	assert.Error(t, err)
}

func TestNew_RegistersJob(t *testing.T) {
	s, err := New(new(mockReminders), "0 9 * * *", 7)
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestRunReminders_PassesDays(t *testing.T) {
	reminders := new(mockReminders)
	reminders.On("SendExpiryReminders", mock.Anything, 3).Return(2, nil)

	s, err := New(reminders, "@daily", 3)
	require.NoError(t, err)

	s.RunReminders()
	reminders.AssertExpectations(t)
}

func TestRunReminders_ErrorIsLogged(t *testing.T) {
	reminders := new(mockReminders)
	reminders.On("SendExpiryReminders", mock.Anything, 7).Return(0, errors.New("db down"))

	s, err := New(reminders, "@daily", 7)
	require.NoError(t, err)

	assert.NotPanics(t, s.RunReminders)
	reminders.AssertExpectations(t)
}

func TestStartStop(t *testing.T) {
	s, err := New(new(mockReminders), "@hourly", 7)
	require.NoError(t, err)

	s.Start()
	ctx := s.Stop()
	<-ctx.Done()
}
