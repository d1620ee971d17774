package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/db"
)

var (
	ErrPlanNotFound   = apperr.NotFound("membership plan not found")
	ErrPlanNameExists = apperr.Conflict("membership plan name already exists")
	ErrPlanInUse      = apperr.Conflict("membership plan has memberships")
)

const planColumns = `id, name, description, duration_days, price_cents, active, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *MembershipPlan) (*MembershipPlan, error) {
	query := `
		INSERT INTO membership_plans (name, description, duration_days, price_cents, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + planColumns

	var created MembershipPlan
	err := r.db.GetContext(ctx, &created, query, p.Name, p.Description, p.DurationDays, p.PriceCents, p.Active)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrPlanNameExists
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*MembershipPlan, error) {
	var p MembershipPlan
	err := r.db.GetContext(ctx, &p, `SELECT `+planColumns+` FROM membership_plans WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]MembershipPlan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name`

	plans := []MembershipPlan{}
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) Update(ctx context.Context, p *MembershipPlan) (*MembershipPlan, error) {
	query := `
		UPDATE membership_plans
		SET name = $1, description = $2, duration_days = $3, price_cents = $4, active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + planColumns

	var updated MembershipPlan
	err := r.db.GetContext(ctx, &updated, query, p.Name, p.Description, p.DurationDays, p.PriceCents, p.Active, p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrPlanNameExists
		}
		return nil, err
	}

	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM membership_plans WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrPlanInUse
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPlanNotFound
	}

	return nil
}
