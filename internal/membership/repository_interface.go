package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Membership) (*Membership, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Membership, error)
	List(ctx context.Context, filter ListFilter) ([]Membership, error)
	UpdatePeriod(ctx context.Context, id uuid.UUID, start, end time.Time, status Status) (*Membership, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Membership, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListExpiring(ctx context.Context, from, to time.Time) ([]Membership, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	CountValidAt(ctx context.Context, at time.Time) (int, error)
	CountExpiring(ctx context.Context, from, to time.Time) (int, error)
	CreateValidationLog(ctx context.Context, l *ValidationLog) error
	ListValidationLogs(ctx context.Context, filter LogFilter) ([]ValidationLog, error)
}
