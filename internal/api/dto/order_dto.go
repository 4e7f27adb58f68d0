package dto

import (
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/service"
)

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// ShippingAddressRequest payload.
type ShippingAddressRequest struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country"`
}

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
}

// ToInput converts the request into service input.
func (r CreateOrderRequest) ToInput() service.PlaceOrderInput {
	items := make([]service.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return service.PlaceOrderInput{
		Items: items,
		ShippingAddress: domain.ShippingAddress{
			Street:  r.ShippingAddress.Street,
			City:    r.ShippingAddress.City,
			State:   r.ShippingAddress.State,
			ZipCode: r.ShippingAddress.ZipCode,
			Country: r.ShippingAddress.Country,
		},
	}
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Order   *domain.Order `json:"order"`
}

// OrderListResponse wraps a page of orders.
type OrderListResponse struct {
	Success    bool               `json:"success"`
	Orders     []domain.Order     `json:"orders"`
	Pagination service.Pagination `json:"pagination"`
}
