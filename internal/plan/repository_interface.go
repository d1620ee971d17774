package plan

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *MembershipPlan) (*MembershipPlan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MembershipPlan, error)
	List(ctx context.Context, activeOnly bool) ([]MembershipPlan, error)
	Update(ctx context.Context, p *MembershipPlan) (*MembershipPlan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
