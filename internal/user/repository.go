package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/db"
)

var (
	ErrUserNotFound = apperr.NotFound("user not found")
	ErrEmailExists  = apperr.Conflict("email already registered")
	ErrCedulaExists = apperr.Conflict("cedula already registered")
	ErrHollerExists = apperr.Conflict("holler code already registered")
	ErrUserInUse    = apperr.Conflict("user is referenced by classes or sales")
)

const userColumns = `id, name, email, password_hash, role, active, cedula, holler, phone, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, active, cedula, holler, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	var created User
	err := r.db.GetContext(ctx, &created, query,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Active, u.Cedula, u.Holler, u.Phone)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	return &created, nil
}

func mapUniqueViolation(err error) error {
	switch db.UniqueConstraint(err) {
	case "users_email_key":
		return ErrEmailExists
	case "users_cedula_key":
		return ErrCedulaExists
	case "users_holler_key":
		return ErrHollerExists
	}
	return err
}

func (r *repository) findOne(ctx context.Context, where string, arg interface{}) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var u User
	err := r.db.GetContext(ctx, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "email = $1", email)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *repository) FindByCedula(ctx context.Context, cedula string) (*User, error) {
	return r.findOne(ctx, "cedula = $1", cedula)
}

func (r *repository) FindByHoller(ctx context.Context, holler string) (*User, error) {
	return r.findOne(ctx, "holler = $1", holler)
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) List(ctx context.Context, role *auth.Role) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}

	if role != nil {
		query += ` WHERE role = $1`
		args = append(args, *role)
	}
	query += ` ORDER BY created_at DESC`

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *repository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.exec(ctx, `UPDATE users SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
}

func (r *repository) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	// the right-hand side sees the old row, so only a first password activates
	return r.exec(ctx, `UPDATE users SET password_hash = $1, active = (active OR password_hash IS NULL), updated_at = NOW() WHERE id = $2`, passwordHash, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrUserInUse
	}
	return err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}
	return count, nil
}
