package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	Role         auth.Role `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	Cedula       string    `db:"cedula" json:"cedula"`
	Holler       *string   `db:"holler" json:"holler,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type CreateUserRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"omitempty,min=8"`
	Role     auth.Role `json:"role" binding:"required,oneof=ADMIN RECEPTIONIST TRAINER CLIENT"`
	Cedula   string    `json:"cedula" binding:"required"`
	Holler   *string   `json:"holler"`
	Phone    *string   `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}
