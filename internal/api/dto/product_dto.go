package dto

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/service"
)

// CreateProductRequest payload.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"required,max=500"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Image       string          `json:"image" validate:"omitempty,url"`
}

// ToInput converts the request into service input.
func (r CreateProductRequest) ToInput() service.ProductCreateInput {
	return service.ProductCreateInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Stock:       r.Stock,
		Image:       r.Image,
	}
}

// ProductResponse wraps one product.
type ProductResponse struct {
	Success bool            `json:"success"`
	Product *domain.Product `json:"product"`
}

// ProductListResponse wraps a page of products.
type ProductListResponse struct {
	Success    bool               `json:"success"`
	Products   []domain.Product   `json:"products"`
	Pagination service.Pagination `json:"pagination"`
}
