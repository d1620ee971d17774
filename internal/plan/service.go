package plan

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
)

var ErrInvalidPlan = apperr.BadRequest("plan name is required and duration must be at least one day")

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreatePlanRequest) (*MembershipPlan, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*MembershipPlan, error)
	List(ctx context.Context, actor auth.Actor, activeOnly bool) ([]MembershipPlan, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdatePlanRequest) (*MembershipPlan, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(p *MembershipPlan) error {
	if strings.TrimSpace(p.Name) == "" || p.DurationDays < 1 || p.PriceCents < 0 {
		return ErrInvalidPlan
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreatePlanRequest) (*MembershipPlan, error) {
	if err := auth.Authorize(actor, auth.OpPlanWrite); err != nil {
		return nil, err
	}

	p := &MembershipPlan{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		DurationDays: req.DurationDays,
		PriceCents:   req.PriceCents,
		Active:       true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	logger.Info("membership plan created", "plan_id", created.ID.String(), "name", created.Name)
	return created, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*MembershipPlan, error) {
	if err := auth.Authorize(actor, auth.OpPlanRead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, actor auth.Actor, activeOnly bool) ([]MembershipPlan, error) {
	if err := auth.Authorize(actor, auth.OpPlanRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, activeOnly)
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdatePlanRequest) (*MembershipPlan, error) {
	if err := auth.Authorize(actor, auth.OpPlanWrite); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.DurationDays != nil {
		p.DurationDays = *req.DurationDays
	}
	if req.PriceCents != nil {
		p.PriceCents = *req.PriceCents
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, p)
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Authorize(actor, auth.OpPlanDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
