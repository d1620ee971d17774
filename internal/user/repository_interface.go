package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByCedula(ctx context.Context, cedula string) (*User, error)
	FindByHoller(ctx context.Context, holler string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, role *auth.Role) ([]User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}
