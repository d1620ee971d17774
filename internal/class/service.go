package class

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
	"github.com/bukohub/gym-fusion-training-sub001/internal/metrics"
	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

var (
	ErrInvalidTimeRange   = apperr.BadRequest("end time must be after start time")
	ErrInvalidCapacity    = apperr.BadRequest("max capacity must be at least 1")
	ErrNotTrainer         = apperr.BadRequest("assigned user is not a trainer")
	ErrInvalidTransition  = apperr.BadRequest("class status can only move from SCHEDULED")
	ErrInvalidClassStatus = apperr.BadRequest("invalid class status")
	ErrNameRequired       = apperr.BadRequest("class name is required")
	ErrInvalidStatsRange  = apperr.BadRequest("from must not be after to")
)

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, email, name, className string, start time.Time) error
	SendBookingCancellation(ctx context.Context, email, name, className string, start time.Time) error
}

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateClassRequest) (*Class, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdateClassRequest) (*Class, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*ClassWithAvailability, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]ClassWithAvailability, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error

	BookClass(ctx context.Context, actor auth.Actor, classID uuid.UUID, userID *uuid.UUID) (*Booking, error)
	CancelBooking(ctx context.Context, actor auth.Actor, classID uuid.UUID, userID *uuid.UUID) error
	MarkAttendance(ctx context.Context, actor auth.Actor, bookingID uuid.UUID, attended bool) (*Booking, error)
	ListBookings(ctx context.Context, actor auth.Actor, classID uuid.UUID) ([]BookingWithDetails, error)
	ListUserBookings(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]BookingWithDetails, error)
	TrainerStats(ctx context.Context, actor auth.Actor, from, to time.Time) ([]TrainerStats, error)
}

type service struct {
	repo     Repository
	users    UserLookup
	notifier Notifier
}

func NewService(repo Repository, users UserLookup, notifier Notifier) Service {
	return &service{
		repo:     repo,
		users:    users,
		notifier: notifier,
	}
}

func (s *service) checkTrainer(ctx context.Context, trainerID uuid.UUID) error {
	trainer, err := s.users.FindByID(ctx, trainerID)
	if err != nil {
		return err
	}
	if trainer.Role != auth.RoleTrainer {
		return ErrNotTrainer
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateClassRequest) (*Class, error) {
	if err := auth.Authorize(actor, auth.OpClassWrite); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if req.MaxCapacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if err := s.checkTrainer(ctx, req.TrainerID); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, &Class{
		Name:        name,
		Description: req.Description,
		TrainerID:   req.TrainerID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxCapacity: req.MaxCapacity,
		Status:      StatusScheduled,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("class created",
		"class_id", c.ID.String(),
		"trainer_id", c.TrainerID.String(),
		"start_time", c.StartTime,
	)
	return c, nil
}

// Update applies a partial change. Status may only leave SCHEDULED; moving a
// class to CANCELLED keeps its bookings.
func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdateClassRequest) (*Class, error) {
	if err := auth.Authorize(actor, auth.OpClassWrite); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		c.Name = name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.StartTime != nil {
		c.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		c.EndTime = *req.EndTime
	}
	if req.MaxCapacity != nil {
		if *req.MaxCapacity < 1 {
			return nil, ErrInvalidCapacity
		}
		c.MaxCapacity = *req.MaxCapacity
	}
	if req.Status != nil && *req.Status != c.Status {
		if !req.Status.Valid() {
			return nil, ErrInvalidClassStatus
		}
		if c.Status != StatusScheduled {
			return nil, ErrInvalidTransition
		}
		c.Status = *req.Status
	}
	if !c.EndTime.After(c.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if req.TrainerID != nil && *req.TrainerID != c.TrainerID {
		if err := s.checkTrainer(ctx, *req.TrainerID); err != nil {
			return nil, err
		}
		c.TrainerID = *req.TrainerID
	}

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, err
	}

	logger.Info("class updated", "class_id", id.String(), "status", string(updated.Status))
	return updated, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*ClassWithAvailability, error) {
	if err := auth.Authorize(actor, auth.OpClassRead); err != nil {
		return nil, err
	}
	return s.repo.GetWithAvailability(ctx, id)
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]ClassWithAvailability, error) {
	if err := auth.Authorize(actor, auth.OpClassRead); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidClassStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Authorize(actor, auth.OpClassDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("class deleted", "class_id", id.String())
	return nil
}

// bookingSubject resolves whose booking the caller is acting on. Clients may
// only act for themselves; the front desk may act for anyone.
func bookingSubject(actor auth.Actor, userID *uuid.UUID) (uuid.UUID, error) {
	if userID == nil || *userID == actor.UserID {
		return actor.UserID, auth.Authorize(actor, auth.OpBookingOwn)
	}
	return *userID, auth.Authorize(actor, auth.OpBookingManage)
}

func (s *service) BookClass(ctx context.Context, actor auth.Actor, classID uuid.UUID, userID *uuid.UUID) (*Booking, error) {
	subject, err := bookingSubject(actor, userID)
	if err != nil {
		return nil, err
	}

	if subject != actor.UserID {
		if _, err := s.users.FindByID(ctx, subject); err != nil {
			return nil, err
		}
	}

	booking, err := s.repo.Book(ctx, subject, classID)
	if err != nil {
		metrics.RecordBooking(bookingResult(err))
		return nil, err
	}

	metrics.RecordBooking("success")
	logger.Info("class booked",
		"booking_id", booking.ID.String(),
		"class_id", classID.String(),
		"user_id", subject.String(),
	)

	if s.notifier != nil {
		s.notify(ctx, subject, classID, s.notifier.SendBookingConfirmation)
	}
	return booking, nil
}

func bookingResult(err error) string {
	switch {
	case errors.Is(err, ErrClassFull):
		return "full"
	case errors.Is(err, ErrAlreadyBooked):
		return "duplicate"
	case errors.Is(err, ErrClassNotBookable):
		return "not_scheduled"
	case errors.Is(err, ErrClassNotFound):
		return "not_found"
	}
	return "error"
}

func (s *service) CancelBooking(ctx context.Context, actor auth.Actor, classID uuid.UUID, userID *uuid.UUID) error {
	subject, err := bookingSubject(actor, userID)
	if err != nil {
		return err
	}

	if err := s.repo.CancelBooking(ctx, subject, classID); err != nil {
		return err
	}

	metrics.RecordBookingCancellation()
	logger.Info("booking cancelled", "class_id", classID.String(), "user_id", subject.String())

	if s.notifier != nil {
		s.notify(ctx, subject, classID, s.notifier.SendBookingCancellation)
	}
	return nil
}

// notify queues a booking email. Failures are logged and never undo the booking change.
func (s *service) notify(ctx context.Context, userID, classID uuid.UUID, send func(ctx context.Context, email, name, className string, start time.Time) error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("booking email skipped", "user_id", userID.String(), "error", err.Error())
		return
	}
	c, err := s.repo.GetByID(ctx, classID)
	if err != nil {
		logger.Warn("booking email skipped", "class_id", classID.String(), "error", err.Error())
		return
	}
	if err := send(ctx, u.Email, u.Name, c.Name, c.StartTime); err != nil {
		logger.Warn("booking email not queued", "user_id", userID.String(), "error", err.Error())
	}
}

func (s *service) MarkAttendance(ctx context.Context, actor auth.Actor, bookingID uuid.UUID, attended bool) (*Booking, error) {
	if err := auth.Authorize(actor, auth.OpClassAttendance); err != nil {
		return nil, err
	}

	b, err := s.repo.SetAttendance(ctx, bookingID, attended)
	if err != nil {
		return nil, err
	}

	logger.Info("attendance marked", "booking_id", bookingID.String(), "attended", attended)
	return b, nil
}

func (s *service) ListBookings(ctx context.Context, actor auth.Actor, classID uuid.UUID) ([]BookingWithDetails, error) {
	if err := auth.Authorize(actor, auth.OpClassAttendance); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	return s.repo.ListBookings(ctx, classID)
}

func (s *service) ListUserBookings(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]BookingWithDetails, error) {
	if err := auth.AuthorizeSelf(actor, auth.OpBookingManage, userID); err != nil {
		return nil, err
	}
	return s.repo.ListUserBookings(ctx, userID)
}

func (s *service) TrainerStats(ctx context.Context, actor auth.Actor, from, to time.Time) ([]TrainerStats, error) {
	if err := auth.Authorize(actor, auth.OpClassAttendance); err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, ErrInvalidStatsRange
	}
	return s.repo.StatsByTrainer(ctx, from, to)
}
