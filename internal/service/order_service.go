package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// OrderService coordinates order placement and history.
type OrderService struct {
	store          repository.Store
	dispatcher     events.Dispatcher
	logger         *zap.Logger
	defaultCountry string
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// OrderItemInput is one requested line.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrderInput describes an order placement payload.
type PlaceOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress domain.ShippingAddress
}

// NewOrderService builds the service.
func NewOrderService(cfg config.OrderConfig, deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		store:          deps.Store,
		dispatcher:     deps.Dispatcher,
		logger:         logger,
		defaultCountry: cfg.DefaultCountry,
	}
}

// PlaceOrder reserves stock for every item and stores the order in one
// transaction. Either every reservation and the order persist, or nothing does.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.NewValidationError("invalid data", []apperrors.FieldError{{Field: "items", Message: "at least one item is required"}})
	}
	for i, item := range input.Items {
		if item.Quantity < 1 {
			return nil, apperrors.NewValidationError("invalid data", []apperrors.FieldError{{Field: itemField(i, "quantity"), Message: "must be at least 1"}})
		}
	}

	address := input.ShippingAddress
	if strings.TrimSpace(address.Country) == "" {
		address.Country = s.defaultCountry
	}

	order := &domain.Order{
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		ShippingAddress: address,
		Items:           make([]domain.OrderItem, 0, len(input.Items)),
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		for _, item := range input.Items {
			product, err := tx.Products().ReserveStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return reservationError(item.ProductID, err)
			}
			order.Items = append(order.Items, domain.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
				Product: &domain.ProductSummary{
					ID:    product.ID,
					Name:  product.Name,
					Price: product.Price,
					Image: product.Image,
				},
			})
		}
		order.RecomputeTotal()
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		s.logger.Error("place order failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventOrderPlaced,
		AggregateID: order.ID,
		UserID:      userID,
		Payload:     orderPlacedPayload(order),
	})
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string, page, limit int) ([]domain.Order, Pagination, error) {
	p := NewPagination(page, limit)
	orders, total, err := s.store.Orders().ListByUser(ctx, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, Pagination{}, apperrors.NewInternalError(err)
	}
	return orders, p.WithTotal(total), nil
}

func reservationError(productID string, err error) error {
	var short *domain.InsufficientStockError
	switch {
	case errors.As(err, &short):
		return apperrors.NewInsufficientStock(short.ProductID, short.ProductName, short.Available)
	case errors.Is(err, domain.ErrProductUnavailable):
		return apperrors.NewProductUnavailable(productID)
	default:
		return err
	}
}

func orderPlacedPayload(order *domain.Order) events.OrderPlacedPayload {
	items := make([]events.OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, events.OrderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return events.OrderPlacedPayload{
		Total:   order.Total,
		Country: order.ShippingAddress.Country,
		Items:   items,
	}
}

func itemField(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}
