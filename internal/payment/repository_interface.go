package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Payment, error)
	// TotalsByMethod sums COMPLETED payments created in [from, to].
	TotalsByMethod(ctx context.Context, from, to time.Time) ([]MethodTotal, error)
}
