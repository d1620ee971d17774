package product

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, activeOnly bool) ([]Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	AddStock(ctx context.Context, id uuid.UUID, quantity int) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateSale decrements stock and records the sale in one transaction.
	CreateSale(ctx context.Context, productID uuid.UUID, quantity int, soldBy uuid.UUID) (*Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*SaleWithProduct, error)
	ListSales(ctx context.Context, filter SaleFilter) ([]SaleWithProduct, error)
	SummarizeSales(ctx context.Context, filter SaleFilter) (*SalesSummary, error)
}
