package product

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Stock       int       `db:"stock" json:"stock"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Sale records a retail sale. Unit and total prices are copied from the
// product when the sale is made and never recomputed.
type Sale struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ProductID       uuid.UUID `db:"product_id" json:"product_id"`
	Quantity        int       `db:"quantity" json:"quantity"`
	UnitPriceCents  int64     `db:"unit_price_cents" json:"unit_price_cents"`
	TotalPriceCents int64     `db:"total_price_cents" json:"total_price_cents"`
	SoldBy          uuid.UUID `db:"sold_by" json:"sold_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type SaleWithProduct struct {
	Sale
	ProductName string `db:"product_name" json:"product_name"`
}

type SalesSummary struct {
	Count        int   `db:"count" json:"count"`
	Units        int   `db:"units" json:"units"`
	RevenueCents int64 `db:"revenue_cents" json:"revenue_cents"`
}

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"gte=0"`
	Stock       int    `json:"stock" binding:"gte=0"`
	Active      *bool  `json:"active"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents" binding:"omitempty,gte=0"`
	Active      *bool   `json:"active"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CreateSaleRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type SaleFilter struct {
	ProductID *uuid.UUID
	SoldBy    *uuid.UUID
	From      *time.Time
	To        *time.Time
}
