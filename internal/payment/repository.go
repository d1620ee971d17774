package payment

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
	"github.com/bukohub/gym-fusion-training-sub001/internal/db"
)

var (
	ErrPaymentNotFound      = apperr.NotFound("payment not found")
	ErrDuplicateTransaction = apperr.Conflict("transaction id already recorded")
)

const paymentColumns = `id, user_id, membership_id, amount_cents, method, status, transaction_id, notes, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	query := `
		INSERT INTO payments (user_id, membership_id, amount_cents, method, status, transaction_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + paymentColumns

	var created Payment
	err := r.db.GetContext(ctx, &created, query,
		p.UserID, p.MembershipID, p.AmountCents, p.Method, p.Status, p.TransactionID, p.Notes)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateTransaction
		}
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
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
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	payments := []Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Payment, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + paymentColumns

	var p Payment
	err := r.db.GetContext(ctx, &p, query, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) TotalsByMethod(ctx context.Context, from, to time.Time) ([]MethodTotal, error) {
	totals := []MethodTotal{}
	err := r.db.SelectContext(ctx, &totals, `
		SELECT method, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS amount_cents
		FROM payments
		WHERE status = 'COMPLETED' AND created_at BETWEEN $1 AND $2
		GROUP BY method
		ORDER BY method`, from, to)
	if err != nil {
		return nil, err
	}
	return totals, nil
}
