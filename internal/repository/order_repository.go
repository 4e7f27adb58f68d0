package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/spec-kit/shop-service/internal/domain"
)

// OrderRepository encapsulates order persistence.
type OrderRepository interface {
	// Create inserts the order and its line items. Run it inside
	// Store.WithinTx so a failed item insert leaves no partial order.
	Create(ctx context.Context, order *domain.Order) error
	// ListByUser returns one page of the user's orders, newest first, with
	// each line item's product summary, plus the user's total order count.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error)
}

type orderRepository struct {
	db DBTX
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(db DBTX) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const insertOrder = `
        INSERT INTO orders (id, user_id, total, status, shipping_street, shipping_city,
            shipping_state, shipping_zip, shipping_country)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at`
	const insertItem = `
        INSERT INTO order_items (order_id, position, product_id, quantity, price)
        VALUES ($1, $2, $3, $4, $5)`

	if len(order.Items) == 0 {
		return fmt.Errorf("create order: no line items")
	}
	if !order.Total.Equal(order.ItemsTotal()) {
		return domain.ErrTotalMismatch
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	addr := order.ShippingAddress
	if err := r.db.QueryRowContext(ctx, insertOrder,
		order.ID,
		order.UserID,
		order.Total,
		order.Status,
		addr.Street,
		addr.City,
		addr.State,
		addr.ZipCode,
		addr.Country,
	).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	for i, item := range order.Items {
		if _, err := r.db.ExecContext(ctx, insertItem, order.ID, i, item.ProductID, item.Quantity, item.Price); err != nil {
			return fmt.Errorf("create order item %d: %w", i, err)
		}
	}
	return nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error) {
	const countQuery = `SELECT COUNT(*) FROM orders WHERE user_id=$1`
	const pageQuery = `
        SELECT o.id, o.user_id, o.total, o.status, o.shipping_street, o.shipping_city,
               o.shipping_state, o.shipping_zip, o.shipping_country, o.created_at, o.updated_at,
               oi.product_id, oi.quantity, oi.price, p.name, p.price, p.image
        FROM (
            SELECT * FROM orders WHERE user_id=$1
            ORDER BY created_at DESC, id DESC
            LIMIT $2 OFFSET $3
        ) o
        JOIN order_items oi ON oi.order_id = o.id
        JOIN products p ON p.id = oi.product_id
        ORDER BY o.created_at DESC, o.id DESC, oi.position ASC`

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	if total == 0 || offset >= total {
		return []domain.Order{}, total, nil
	}

	rows, err := r.db.QueryContext(ctx, pageQuery, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	index := make(map[string]int, limit)
	for rows.Next() {
		var (
			order   domain.Order
			item    domain.OrderItem
			product domain.ProductSummary
		)
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Total,
			&order.Status,
			&order.ShippingAddress.Street,
			&order.ShippingAddress.City,
			&order.ShippingAddress.State,
			&order.ShippingAddress.ZipCode,
			&order.ShippingAddress.Country,
			&order.CreatedAt,
			&order.UpdatedAt,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
			&product.Name,
			&product.Price,
			&product.Image,
		); err != nil {
			return nil, 0, err
		}
		product.ID = item.ProductID
		item.Product = &product

		pos, seen := index[order.ID]
		if !seen {
			pos = len(orders)
			index[order.ID] = pos
			orders = append(orders, order)
		}
		orders[pos].Items = append(orders[pos].Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
