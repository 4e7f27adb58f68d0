package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// CatalogService serves the product catalog.
type CatalogService struct {
	products repository.ProductRepository
}

// NewCatalogService builds the service.
func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// ProductFilter narrows the public catalog listing.
type ProductFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ProductCreateInput describes an admin product creation payload.
type ProductCreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int
	Image       string
}

// ListProducts returns one page of active products ordered by name.
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, Pagination, error) {
	page := NewPagination(filter.Page, filter.Limit)

	products, total, err := s.products.List(ctx, repository.ProductFilter{
		Category:   filter.Category,
		Search:     filter.Search,
		ActiveOnly: true,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return nil, Pagination{}, apperrors.NewInternalError(err)
	}
	return products, page.WithTotal(total), nil
}

// GetProduct returns an active product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.NewNotFound("product", map[string]any{"productId": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !product.Active {
		return nil, apperrors.NewNotFound("product", map[string]any{"productId": id})
	}
	return product, nil
}

// CreateProduct adds an active product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductCreateInput) (*domain.Product, error) {
	if input.Price.IsNegative() {
		return nil, apperrors.NewValidationError("invalid data", []apperrors.FieldError{{Field: "price", Message: "must be greater than or equal to 0"}})
	}
	if input.Stock < 0 {
		return nil, apperrors.NewValidationError("invalid data", []apperrors.FieldError{{Field: "stock", Message: "must be greater than or equal to 0"}})
	}

	image := strings.TrimSpace(input.Image)
	if image == "" {
		image = domain.DefaultProductImage
	}
	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price.Round(2),
		Category:    strings.TrimSpace(input.Category),
		Stock:       input.Stock,
		Image:       image,
		Active:      true,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return product, nil
}
