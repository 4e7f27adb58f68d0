package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/api/validation"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/service"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// OrdersHandler exposes order endpoints for the authenticated user.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Create handles POST /api/orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no token")
	}

	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	order, err := h.orders.PlaceOrder(c.UserContext(), user.ID, req.ToInput())
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.OrderResponse{
		Success: true,
		Message: "order created successfully",
		Order:   order,
	})
}

// List handles GET /api/orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no token")
	}

	orders, page, err := h.orders.ListOrders(c.UserContext(), user.ID, c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return err
	}

	return c.JSON(dto.OrderListResponse{
		Success:    true,
		Orders:     orders,
		Pagination: page,
	})
}
