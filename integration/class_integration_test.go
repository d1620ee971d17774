package integration_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/class"
	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

func TestConcurrentBookingsRespectCapacity_Integration(t *testing.T) {
	conn := setupTestDB(t)

	trainer := createTestUser(t, conn, "Trainer", auth.RoleTrainer)
	classID := createTestClass(t, conn, trainer.UserID, 3)

	const members = 10
	clients := make([]auth.Actor, members)
	for i := range clients {
		clients[i] = createTestUser(t, conn, "Member", auth.RoleClient)
	}

	svc := class.NewService(class.NewRepository(conn), user.NewRepository(conn), nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		booked  int
		full    int
		unknown []error
	)
	for _, c := range clients {
		wg.Add(1)
		go func(actor auth.Actor) {
			defer wg.Done()
			_, err := svc.BookClass(context.Background(), actor, classID, nil)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, class.ErrClassFull):
				full++
			default:
				unknown = append(unknown, err)
			}
		}(c)
	}
	wg.Wait()

	require.Empty(t, unknown)
	assert.Equal(t, 3, booked)
	assert.Equal(t, members-3, full)
	assert.Equal(t, 3, countRows(t, conn, "SELECT COUNT(*) FROM class_bookings WHERE class_id = $1", classID))
}

func TestDuplicateBooking_Integration(t *testing.T) {
	conn := setupTestDB(t)

	trainer := createTestUser(t, conn, "Trainer", auth.RoleTrainer)
	member := createTestUser(t, conn, "Member", auth.RoleClient)
	classID := createTestClass(t, conn, trainer.UserID, 5)

	repo := class.NewRepository(conn)
	_, err := repo.Book(context.Background(), member.UserID, classID)
	require.NoError(t, err)

	_, err = repo.Book(context.Background(), member.UserID, classID)
	assert.ErrorIs(t, err, class.ErrAlreadyBooked)

	require.NoError(t, repo.CancelBooking(context.Background(), member.UserID, classID))
	assert.ErrorIs(t, repo.CancelBooking(context.Background(), member.UserID, classID), class.ErrBookingNotFound)
}

func TestTrainerOverlap_Integration(t *testing.T) {
	conn := setupTestDB(t)

	admin := createTestUser(t, conn, "Admin", auth.RoleAdmin)
	trainer := createTestUser(t, conn, "Trainer", auth.RoleTrainer)
	svc := class.NewService(class.NewRepository(conn), user.NewRepository(conn), nil)

	start := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	first, err := svc.Create(context.Background(), admin, class.CreateClassRequest{
		Name: "Yoga", TrainerID: trainer.UserID, StartTime: start, EndTime: start.Add(time.Hour), MaxCapacity: 10,
	})
	require.NoError(t, err)

	// Touching boundaries count as overlap.
	_, err = svc.Create(context.Background(), admin, class.CreateClassRequest{
		Name: "Pilates", TrainerID: trainer.UserID, StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour), MaxCapacity: 10,
	})
	assert.ErrorIs(t, err, class.ErrScheduleConflict)

	// A minute of gap is enough while the first class is still scheduled.
	later, err := svc.Create(context.Background(), admin, class.CreateClassRequest{
		Name: "Pilates", TrainerID: trainer.UserID, StartTime: start.Add(time.Hour + time.Minute), EndTime: start.Add(2 * time.Hour), MaxCapacity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, class.StatusScheduled, later.Status)

	cancelled := class.StatusCancelled
	_, err = svc.Update(context.Background(), admin, first.ID, class.UpdateClassRequest{Status: &cancelled})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), admin, class.CreateClassRequest{
		Name: "Pilates", TrainerID: trainer.UserID, StartTime: start, EndTime: start.Add(time.Hour), MaxCapacity: 10,
	})
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), admin, class.CreateClassRequest{
		Name: "Boxing", TrainerID: uuid.New(), StartTime: start, EndTime: start.Add(time.Hour), MaxCapacity: 10,
	})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
