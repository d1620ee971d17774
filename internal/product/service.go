package product

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
	"github.com/bukohub/gym-fusion-training-sub001/internal/metrics"
)

var (
	ErrInvalidProduct  = apperr.BadRequest("product name is required and price and stock cannot be negative")
	ErrInvalidQuantity = apperr.BadRequest("quantity must be at least 1")
)

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateProductRequest) (*Product, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Product, error)
	List(ctx context.Context, actor auth.Actor, activeOnly bool) ([]Product, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdateProductRequest) (*Product, error)
	Restock(ctx context.Context, actor auth.Actor, id uuid.UUID, quantity int) (*Product, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error

	CreateSale(ctx context.Context, actor auth.Actor, req CreateSaleRequest) (*Sale, error)
	GetSale(ctx context.Context, actor auth.Actor, id uuid.UUID) (*SaleWithProduct, error)
	ListSales(ctx context.Context, actor auth.Actor, filter SaleFilter) ([]SaleWithProduct, error)
	SalesSummary(ctx context.Context, actor auth.Actor, filter SaleFilter) (*SalesSummary, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(p *Product) error {
	if strings.TrimSpace(p.Name) == "" || p.PriceCents < 0 || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateProductRequest) (*Product, error) {
	if err := auth.Authorize(actor, auth.OpProductWrite); err != nil {
		return nil, err
	}

	p := &Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Active:      true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	logger.Info("product created", "product_id", created.ID.String(), "stock", created.Stock)
	return created, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Product, error) {
	if err := auth.Authorize(actor, auth.OpProductRead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, actor auth.Actor, activeOnly bool) ([]Product, error) {
	if err := auth.Authorize(actor, auth.OpProductRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, activeOnly)
}

// Update changes catalogue fields. Stock only moves through Restock and sales.
func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	if err := auth.Authorize(actor, auth.OpProductWrite); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.PriceCents != nil {
		p.PriceCents = *req.PriceCents
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, p)
}

func (s *service) Restock(ctx context.Context, actor auth.Actor, id uuid.UUID, quantity int) (*Product, error) {
	if err := auth.Authorize(actor, auth.OpProductWrite); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.repo.AddStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	logger.Info("product restocked", "product_id", id.String(), "added", quantity, "stock", p.Stock)
	return p, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Authorize(actor, auth.OpProductDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) CreateSale(ctx context.Context, actor auth.Actor, req CreateSaleRequest) (*Sale, error) {
	if err := auth.Authorize(actor, auth.OpSaleCreate); err != nil {
		return nil, err
	}
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	sale, err := s.repo.CreateSale(ctx, req.ProductID, req.Quantity, actor.UserID)
	if err != nil {
		return nil, err
	}

	metrics.RecordSale(sale.Quantity, sale.TotalPriceCents)
	logger.Info("sale recorded",
		"sale_id", sale.ID.String(),
		"product_id", sale.ProductID.String(),
		"quantity", sale.Quantity,
		"total_cents", sale.TotalPriceCents,
		"sold_by", actor.UserID.String(),
	)
	return sale, nil
}

func (s *service) GetSale(ctx context.Context, actor auth.Actor, id uuid.UUID) (*SaleWithProduct, error) {
	if err := auth.Authorize(actor, auth.OpSaleRead); err != nil {
		return nil, err
	}
	return s.repo.GetSale(ctx, id)
}

func (s *service) ListSales(ctx context.Context, actor auth.Actor, filter SaleFilter) ([]SaleWithProduct, error) {
	if err := auth.Authorize(actor, auth.OpSaleRead); err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, filter)
}

func (s *service) SalesSummary(ctx context.Context, actor auth.Actor, filter SaleFilter) (*SalesSummary, error) {
	if err := auth.Authorize(actor, auth.OpSaleRead); err != nil {
		return nil, err
	}
	return s.repo.SummarizeSales(ctx, filter)
}
