package product

import (
	"context"
	"errors"
	"strings"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	productrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/product"
	"github.com/shopspring/decimal"
)

// ErrInvalidProduct is returned when a catalog write fails validation.
var ErrInvalidProduct = errors.New("invalid product")

// Service is the thin catalog layer: jerseys with per-size stock.
type Service struct {
	products productrepo.Repository
}

// New creates a Service.
func New(products productrepo.Repository) *Service {
	return &Service{products: products}
}

// Create adds a catalog entry. Admin only; the handler enforces the role.
func (s *Service) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, p)
}

// Update replaces a catalog entry and its size variants.
func (s *Service) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		return nil, ErrInvalidProduct
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	return s.products.Update(ctx, p)
}

// Get returns one catalog entry.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// List returns the catalog.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func validate(p domain.Product) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrInvalidProduct
	}
	if p.Price.IsNegative() {
		return ErrInvalidProduct
	}
	if p.Discount.IsNegative() || p.Discount.GreaterThan(hundred) {
		return ErrInvalidProduct
	}
	seen := make(map[domain.Size]bool, len(p.Sizes))
	for _, v := range p.Sizes {
		if !v.Size.Valid() || v.Quantity < 0 || seen[v.Size] {
			return ErrInvalidProduct
		}
		seen[v.Size] = true
	}
	return nil
}

var hundred = decimal.NewFromInt(100)
