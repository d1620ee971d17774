package class

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/db"
)

var (
	ErrClassNotFound    = apperr.NotFound("class not found")
	ErrBookingNotFound  = apperr.NotFound("booking not found")
	ErrScheduleConflict = apperr.Conflict("trainer already has a class scheduled in this time range")
	ErrAlreadyBooked    = apperr.Conflict("user already booked this class")
	ErrClassFull        = apperr.BadRequest("class is full")
	ErrClassNotBookable = apperr.BadRequest("class is not open for booking")
)

const classColumns = `id, name, description, trainer_id, start_time, end_time, max_capacity, status, created_at, updated_at`

const bookingDetailsSelect = `
		SELECT b.id, b.user_id, b.class_id, b.attended, b.created_at,
			c.name AS class_name, c.start_time AS class_start, c.end_time AS class_end,
			u.name AS user_name, u.email AS user_email
		FROM class_bookings b
		JOIN classes c ON b.class_id = c.id
		JOIN users u ON b.user_id = u.id`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// lockTrainerSchedule takes a row lock on the trainer so that concurrent
// schedule changes for the same trainer run one after another, then checks
// for an inclusive overlap with the trainer's other SCHEDULED classes.
func lockTrainerSchedule(ctx context.Context, tx *sqlx.Tx, trainerID uuid.UUID, start, end time.Time, exclude *uuid.UUID) error {
	var locked uuid.UUID
	err := tx.GetContext(ctx, &locked, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, trainerID)
	if err != nil {
		return err
	}

	query := `
		SELECT EXISTS(
			SELECT 1 FROM classes
			WHERE trainer_id = $1 AND status = 'SCHEDULED'
			  AND start_time <= $3 AND end_time >= $2`
	args := []interface{}{trainerID, start, end}
	if exclude != nil {
		query += ` AND id <> $4`
		args = append(args, *exclude)
	}
	query += `)`

	var overlaps bool
	if err := tx.GetContext(ctx, &overlaps, query, args...); err != nil {
		return err
	}
	if overlaps {
		return ErrScheduleConflict
	}
	return nil
}

func (r *repository) Create(ctx context.Context, c *Class) (*Class, error) {
	var created Class
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockTrainerSchedule(ctx, tx, c.TrainerID, c.StartTime, c.EndTime, nil); err != nil {
			return err
		}

		query := `
			INSERT INTO classes (name, description, trainer_id, start_time, end_time, max_capacity, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING ` + classColumns
		return tx.GetContext(ctx, &created, query,
			c.Name, c.Description, c.TrainerID, c.StartTime, c.EndTime, c.MaxCapacity, c.Status)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, c *Class) (*Class, error) {
	var updated Class
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if c.Status == StatusScheduled {
			if err := lockTrainerSchedule(ctx, tx, c.TrainerID, c.StartTime, c.EndTime, &c.ID); err != nil {
				return err
			}
		}

		query := `
			UPDATE classes
			SET name = $1, description = $2, trainer_id = $3, start_time = $4, end_time = $5,
				max_capacity = $6, status = $7, updated_at = NOW()
			WHERE id = $8
			RETURNING ` + classColumns
		err := tx.GetContext(ctx, &updated, query,
			c.Name, c.Description, c.TrainerID, c.StartTime, c.EndTime, c.MaxCapacity, c.Status, c.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClassNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Class, error) {
	var c Class
	err := r.db.GetContext(ctx, &c, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const availabilitySelect = `
		SELECT c.id, c.name, c.description, c.trainer_id, c.start_time, c.end_time,
			c.max_capacity, c.status, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM class_bookings b WHERE b.class_id = c.id) AS booked_count
		FROM classes c`

func (r *repository) GetWithAvailability(ctx context.Context, id uuid.UUID) (*ClassWithAvailability, error) {
	var c ClassWithAvailability
	err := r.db.GetContext(ctx, &c, availabilitySelect+` WHERE c.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	c.fill()
	return &c, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]ClassWithAvailability, error) {
	query := availabilitySelect
	conds := []string{}
	args := []interface{}{}

	if filter.TrainerID != nil {
		args = append(args, *filter.TrainerID)
		conds = append(conds, fmt.Sprintf("c.trainer_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("c.start_time >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("c.start_time <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY c.start_time ASC`

	classes := []ClassWithAvailability{}
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, err
	}
	for i := range classes {
		classes[i].fill()
	}
	return classes, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrClassNotFound
	}
	return nil
}

// Book reserves a seat. The class row is locked for the whole check-and-insert
// so concurrent bookings cannot oversell the last seat.
func (r *repository) Book(ctx context.Context, userID, classID uuid.UUID) (*Booking, error) {
	var booking Booking
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var class struct {
			MaxCapacity int    `db:"max_capacity"`
			Status      Status `db:"status"`
		}
		err := tx.GetContext(ctx, &class, `SELECT max_capacity, status FROM classes WHERE id = $1 FOR UPDATE`, classID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClassNotFound
		}
		if err != nil {
			return err
		}
		if class.Status != StatusScheduled {
			return ErrClassNotBookable
		}

		var exists bool
		err = tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM class_bookings WHERE user_id = $1 AND class_id = $2)`, userID, classID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyBooked
		}

		var booked int
		if err := tx.GetContext(ctx, &booked, `SELECT COUNT(*) FROM class_bookings WHERE class_id = $1`, classID); err != nil {
			return err
		}
		if booked >= class.MaxCapacity {
			return ErrClassFull
		}

		err = tx.GetContext(ctx, &booking, `
			INSERT INTO class_bookings (user_id, class_id)
			VALUES ($1, $2)
			RETURNING id, user_id, class_id, attended, created_at`, userID, classID)
		if db.IsUniqueViolation(err) {
			return ErrAlreadyBooked
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) CancelBooking(ctx context.Context, userID, classID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM class_bookings WHERE user_id = $1 AND class_id = $2`, userID, classID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *repository) SetAttendance(ctx context.Context, bookingID uuid.UUID, attended bool) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `
		UPDATE class_bookings SET attended = $1
		WHERE id = $2
		RETURNING id, user_id, class_id, attended, created_at`, attended, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListBookings(ctx context.Context, classID uuid.UUID) ([]BookingWithDetails, error) {
	bookings := []BookingWithDetails{}
	err := r.db.SelectContext(ctx, &bookings, bookingDetailsSelect+` WHERE b.class_id = $1 ORDER BY b.created_at ASC`, classID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingWithDetails, error) {
	bookings := []BookingWithDetails{}
	err := r.db.SelectContext(ctx, &bookings, bookingDetailsSelect+` WHERE b.user_id = $1 ORDER BY c.start_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

const trainerStatsQuery = `
SELECT
  u.id   AS trainer_id,
  u.name AS trainer_name,
  COUNT(DISTINCT c.id)                                       AS classes,
  COUNT(DISTINCT c.id) FILTER (WHERE c.status = 'CANCELLED') AS cancelled,
  COUNT(b.id)                                                AS bookings,
  COUNT(b.id) FILTER (WHERE b.attended)                      AS attended
FROM classes c
JOIN users u ON u.id = c.trainer_id
LEFT JOIN class_bookings b ON b.class_id = c.id
WHERE c.start_time BETWEEN $1 AND $2
GROUP BY u.id, u.name
ORDER BY u.name`

func (r *repository) StatsByTrainer(ctx context.Context, from, to time.Time) ([]TrainerStats, error) {
	stats := []TrainerStats{}
	if err := r.db.SelectContext(ctx, &stats, trainerStatsQuery, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}
