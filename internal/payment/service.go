package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
	"github.com/bukohub/gym-fusion-training-sub001/internal/membership"
	"github.com/bukohub/gym-fusion-training-sub001/internal/metrics"
	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

var (
	ErrInvalidAmount      = apperr.BadRequest("amount must be greater than zero")
	ErrInvalidMethod      = apperr.BadRequest("payment method must be CASH, CARD or TRANSFER")
	ErrInvalidStatus      = apperr.BadRequest("invalid payment status")
	ErrMembershipMismatch = apperr.BadRequest("membership does not belong to the user")
	ErrRefundNotCompleted = apperr.BadRequest("only completed payments can be refunded")
	ErrInvalidRange       = apperr.BadRequest("from must not be after to")
)

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type MembershipLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*membership.Membership, error)
}

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreatePaymentRequest) (*Payment, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Payment, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]Payment, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, status Status) (*Payment, error)
	TotalsByMethod(ctx context.Context, actor auth.Actor, from, to time.Time) ([]MethodTotal, error)
}

type service struct {
	repo        Repository
	users       UserLookup
	memberships MembershipLookup
}

func NewService(repo Repository, users UserLookup, memberships MembershipLookup) Service {
	return &service{
		repo:        repo,
		users:       users,
		memberships: memberships,
	}
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreatePaymentRequest) (*Payment, error) {
	if err := auth.Authorize(actor, auth.OpPaymentWrite); err != nil {
		return nil, err
	}

	if req.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidMethod
	}
	status := StatusCompleted
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		status = *req.Status
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	if req.MembershipID != nil {
		m, err := s.memberships.GetByID(ctx, *req.MembershipID)
		if err != nil {
			return nil, err
		}
		if m.UserID != req.UserID {
			return nil, ErrMembershipMismatch
		}
	}

	transactionID := strings.TrimSpace(req.TransactionID)
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	p, err := s.repo.Create(ctx, &Payment{
		UserID:        req.UserID,
		MembershipID:  req.MembershipID,
		AmountCents:   req.AmountCents,
		Method:        req.Method,
		Status:        status,
		TransactionID: transactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPayment(string(p.Method), string(p.Status))
	logger.Info("payment recorded",
		"payment_id", p.ID.String(),
		"user_id", p.UserID.String(),
		"amount_cents", p.AmountCents,
		"method", string(p.Method),
		"transaction_id", p.TransactionID,
	)
	return p, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeSelf(actor, auth.OpPaymentRead, p.UserID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]Payment, error) {
	var err error
	if filter.UserID != nil {
		err = auth.AuthorizeSelf(actor, auth.OpPaymentRead, *filter.UserID)
	} else {
		err = auth.Authorize(actor, auth.OpPaymentRead)
	}
	if err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus moves a payment to status. A refund is only possible for a
// completed payment.
func (s *service) UpdateStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, status Status) (*Payment, error) {
	if err := auth.Authorize(actor, auth.OpPaymentWrite); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == StatusRefunded && current.Status != StatusCompleted && current.Status != StatusRefunded {
		return nil, ErrRefundNotCompleted
	}

	p, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	metrics.RecordPayment(string(p.Method), string(p.Status))
	logger.Info("payment status changed",
		"payment_id", id.String(),
		"from", string(current.Status),
		"to", string(p.Status),
	)
	return p, nil
}

func (s *service) TotalsByMethod(ctx context.Context, actor auth.Actor, from, to time.Time) ([]MethodTotal, error) {
	if err := auth.Authorize(actor, auth.OpPaymentRead); err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	return s.repo.TotalsByMethod(ctx, from, to)
}
