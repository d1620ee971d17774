package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/db"
)

var (
	ErrProductNotFound   = apperr.NotFound("product not found")
	ErrSaleNotFound      = apperr.NotFound("sale not found")
	ErrProductInactive   = apperr.BadRequest("product is not active")
	ErrInsufficientStock = apperr.BadRequest("insufficient stock")
	ErrProductInUse      = apperr.Conflict("product has recorded sales")
)

const productColumns = `id, name, description, price_cents, stock, active, created_at, updated_at`

const saleColumns = `id, product_id, quantity, unit_price_cents, total_price_cents, sold_by, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Product) (*Product, error) {
	query := `
		INSERT INTO products (name, description, price_cents, stock, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns

	var created Product
	if err := r.db.GetContext(ctx, &created, query, p.Name, p.Description, p.PriceCents, p.Stock, p.Active); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name`

	products := []Product{}
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Update(ctx context.Context, p *Product) (*Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price_cents = $3, active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + productColumns

	var updated Product
	err := r.db.GetContext(ctx, &updated, query, p.Name, p.Description, p.PriceCents, p.Active, p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *repository) AddStock(ctx context.Context, id uuid.UUID, quantity int) (*Product, error) {
	query := `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + productColumns

	var p Product
	err := r.db.GetContext(ctx, &p, query, quantity, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrProductInUse
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) CreateSale(ctx context.Context, productID uuid.UUID, quantity int, soldBy uuid.UUID) (*Sale, error) {
	var sale Sale
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var p Product
		err := tx.GetContext(ctx, &p, `
			SELECT `+productColumns+`
			FROM products
			WHERE id = $1
			FOR UPDATE`, productID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		if !p.Active {
			return ErrProductInactive
		}
		if p.Stock < quantity {
			return ErrInsufficientStock
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2`, quantity, productID)
		if err != nil {
			return err
		}

		return tx.GetContext(ctx, &sale, `
			INSERT INTO sales (product_id, quantity, unit_price_cents, total_price_cents, sold_by)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+saleColumns,
			productID, quantity, p.PriceCents, SaleTotal(p.PriceCents, quantity), soldBy)
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// SaleTotal is the price charged for quantity units at unitPrice.
func SaleTotal(unitPriceCents int64, quantity int) int64 {
	return unitPriceCents * int64(quantity)
}

const saleSelect = `
		SELECT s.id, s.product_id, s.quantity, s.unit_price_cents, s.total_price_cents, s.sold_by, s.created_at,
			p.name AS product_name
		FROM sales s
		JOIN products p ON s.product_id = p.id`

func (r *repository) GetSale(ctx context.Context, id uuid.UUID) (*SaleWithProduct, error) {
	var s SaleWithProduct
	err := r.db.GetContext(ctx, &s, saleSelect+` WHERE s.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func saleConditions(filter SaleFilter) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}

	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		conds = append(conds, fmt.Sprintf("s.product_id = $%d", len(args)))
	}
	if filter.SoldBy != nil {
		args = append(args, *filter.SoldBy)
		conds = append(conds, fmt.Sprintf("s.sold_by = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("s.created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("s.created_at <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

func (r *repository) ListSales(ctx context.Context, filter SaleFilter) ([]SaleWithProduct, error) {
	where, args := saleConditions(filter)

	sales := []SaleWithProduct{}
	err := r.db.SelectContext(ctx, &sales, saleSelect+where+` ORDER BY s.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) SummarizeSales(ctx context.Context, filter SaleFilter) (*SalesSummary, error) {
	where, args := saleConditions(filter)
	query := `
		SELECT COUNT(*) AS count,
			COALESCE(SUM(s.quantity), 0) AS units,
			COALESCE(SUM(s.total_price_cents), 0) AS revenue_cents
		FROM sales s` + where

	var summary SalesSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, err
	}
	return &summary, nil
}
