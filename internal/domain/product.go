package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultProductImage is used when a product is created without an image.
const DefaultProductImage = "https://via.placeholder.com/300x300?text=Producto"

// Product is a catalog entry that can be ordered while active and in stock.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Active      bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
