package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
	ErrPasswordRequired   = apperr.BadRequest("password is required for staff accounts")
	ErrInvalidRole        = apperr.BadRequest("invalid role")
)

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateUserRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	GetByID(ctx context.Context, actor auth.Actor, id uuid.UUID) (*User, error)
	List(ctx context.Context, actor auth.Actor, role *auth.Role) ([]User, error)
	SetActive(ctx context.Context, actor auth.Actor, id uuid.UUID, active bool) error
	SetPassword(ctx context.Context, actor auth.Actor, id uuid.UUID, password string) error
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	EnsureAdmin(ctx context.Context, email, password string) error
}

type service struct {
	repo          Repository
	accessSecret  string
	refreshSecret string
}

func NewService(repo Repository, accessSecret, refreshSecret string) Service {
	return &service{
		repo:          repo,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
	}
}

// Create registers a user at the front desk. Clients may be created without a
// password; they stay inactive until one is set.
func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateUserRequest) (*User, error) {
	if err := auth.Authorize(actor, auth.OpUserCreate); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if req.Role == auth.RoleAdmin && actor.Role != auth.RoleAdmin {
		return nil, auth.ErrForbidden
	}
	if req.Password == "" && req.Role != auth.RoleClient {
		return nil, ErrPasswordRequired
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	u := &User{
		Name:   req.Name,
		Email:  email,
		Role:   req.Role,
		Cedula: strings.TrimSpace(req.Cedula),
		Holler: normalizeHoller(req.Holler),
		Phone:  req.Phone,
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
		u.Active = true
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}

	logger.Info("user created", "user_id", created.ID.String(), "role", string(created.Role), "created_by", actor.UserID.String())
	return created, nil
}

// normalizeHoller maps a blank holler code to NULL so it never collides
// under the unique constraint.
func normalizeHoller(h *string) *string {
	if h == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*h)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if !user.Active || user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		user.ID,
		user.Email,
		user.Role,
		s.accessSecret,
		s.refreshSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.refreshSecret, s.accessSecret)
	if err != nil {
		return "", nil, apperr.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}
	if !user.Active {
		return "", nil, ErrInvalidCredentials
	}

	// role may have changed since the refresh token was issued
	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Email, user.Role, s.accessSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}

func (s *service) GetByID(ctx context.Context, actor auth.Actor, id uuid.UUID) (*User, error) {
	if err := auth.AuthorizeSelf(actor, auth.OpUserRead, id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, actor auth.Actor, role *auth.Role) ([]User, error) {
	if err := auth.Authorize(actor, auth.OpUserRead); err != nil {
		return nil, err
	}
	if role != nil && !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.repo.List(ctx, role)
}

// guardAdminTarget keeps front desk staff from modifying administrator accounts.
func (s *service) guardAdminTarget(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if actor.Role == auth.RoleAdmin {
		return nil
	}
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == auth.RoleAdmin {
		return auth.ErrForbidden
	}
	return nil
}

func (s *service) SetActive(ctx context.Context, actor auth.Actor, id uuid.UUID, active bool) error {
	if err := auth.Authorize(actor, auth.OpUserUpdate); err != nil {
		return err
	}
	if err := s.guardAdminTarget(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, active)
}

// SetPassword replaces the password hash. Only an account that never had a
// password is activated by it; a deactivated account stays inactive.
func (s *service) SetPassword(ctx context.Context, actor auth.Actor, id uuid.UUID, password string) error {
	if actor.UserID != id {
		if err := auth.Authorize(actor, auth.OpUserUpdate); err != nil {
			return err
		}
		if err := s.guardAdminTarget(ctx, actor, id); err != nil {
			return err
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, id, hash)
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Authorize(actor, auth.OpUserDelete); err != nil {
		return err
	}
	if actor.UserID == id {
		return apperr.BadRequest("cannot delete your own account")
	}
	return s.repo.Delete(ctx, id)
}

// EnsureAdmin seeds the first administrator when the users table is empty.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin, err := s.repo.Create(ctx, &User{
		Name:         "Administrator",
		Email:        strings.ToLower(email),
		PasswordHash: &hash,
		Role:         auth.RoleAdmin,
		Active:       true,
		Cedula:       "ADMIN",
	})
	if err != nil {
		return err
	}

	logger.Info("bootstrap admin created", "user_id", admin.ID.String())
	return nil
}
