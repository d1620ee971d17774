package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
)

var ErrMembershipNotFound = apperr.NotFound("membership not found")

const membershipColumns = `id, user_id, plan_id, start_date, end_date, status, created_at, updated_at`

const logColumns = `id, membership_id, user_id, validation_type, identifier, success, reason, validated_by, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Membership) (*Membership, error) {
	query := `
		INSERT INTO memberships (user_id, plan_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + membershipColumns

	var created Membership
	err := r.db.GetContext(ctx, &created, query, m.UserID, m.PlanID, m.StartDate, m.EndDate, m.Status)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships`
	conds := []string{}
	args := []interface{}{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	memberships := []Membership{}
	if err := r.db.SelectContext(ctx, &memberships, query, args...); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *repository) UpdatePeriod(ctx context.Context, id uuid.UUID, start, end time.Time, status Status) (*Membership, error) {
	query := `
		UPDATE memberships
		SET start_date = $1, end_date = $2, status = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + membershipColumns

	var m Membership
	err := r.db.GetContext(ctx, &m, query, start, end, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Membership, error) {
	query := `
		UPDATE memberships
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + membershipColumns

	var m Membership
	err := r.db.GetContext(ctx, &m, query, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// ListExpiring returns ACTIVE memberships with end_date in [from, to].
func (r *repository) ListExpiring(ctx context.Context, from, to time.Time) ([]Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE status = 'ACTIVE' AND end_date BETWEEN $1 AND $2
		ORDER BY end_date ASC`

	memberships := []Membership{}
	if err := r.db.SelectContext(ctx, &memberships, query, from, to); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM memberships GROUP BY status`)
	if err != nil {
		return nil, err
	}

	counts := make(map[Status]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) CountValidAt(ctx context.Context, at time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM memberships WHERE status = 'ACTIVE' AND start_date <= $1 AND end_date >= $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, at); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CountExpiring(ctx context.Context, from, to time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM memberships WHERE status = 'ACTIVE' AND end_date BETWEEN $1 AND $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CreateValidationLog(ctx context.Context, l *ValidationLog) error {
	query := `
		INSERT INTO validation_logs (membership_id, user_id, validation_type, identifier, success, reason, validated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, query,
		l.MembershipID, l.UserID, l.ValidationType, l.Identifier, l.Success, l.Reason, l.ValidatedBy,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *repository) ListValidationLogs(ctx context.Context, filter LogFilter) ([]ValidationLog, error) {
	query := `SELECT ` + logColumns + ` FROM validation_logs`
	conds := []string{}
	args := []interface{}{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.MembershipID != nil {
		args = append(args, *filter.MembershipID)
		conds = append(conds, fmt.Sprintf("membership_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	logs := []ValidationLog{}
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, err
	}
	return logs, nil
}
