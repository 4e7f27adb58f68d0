package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

var testAddress = domain.ShippingAddress{Street: "Calle 1", City: "Guadalajara", State: "Jalisco", ZipCode: "44100"}

func newOrderService(store *memStore, d events.Dispatcher) *OrderService {
	return NewOrderService(config.OrderConfig{DefaultCountry: "México"}, OrderDependencies{Store: store, Dispatcher: d})
}

func TestPlaceOrder_DecrementsStockAndTotals(t *testing.T) {
	store := newMemStore()
	laptop := store.addProduct("Laptop", 100, 5, true)
	d := &recordingDispatcher{}
	svc := newOrderService(store, d)

	order, err := svc.PlaceOrder(context.Background(), "u-1", PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: laptop, Quantity: 3}},
		ShippingAddress: testAddress,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, store.stock(laptop))
	assert.True(t, decimal.NewFromInt(300).Equal(order.Total))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "México", order.ShippingAddress.Country)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Laptop", order.Items[0].Product.Name)

	require.Len(t, d.events, 1)
	assert.Equal(t, events.EventOrderPlaced, d.events[0].Type)
	assert.Equal(t, order.ID, d.events[0].AggregateID)
}

func TestPlaceOrder_KeepsExplicitCountry(t *testing.T) {
	store := newMemStore()
	id := store.addProduct("Mouse", 25, 1, true)
	svc := newOrderService(store, nil)

	addr := testAddress
	addr.Country = "Colombia"
	order, err := svc.PlaceOrder(context.Background(), "u-1", PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: id, Quantity: 1}},
		ShippingAddress: addr,
	})
	require.NoError(t, err)
	assert.Equal(t, "Colombia", order.ShippingAddress.Country)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	store := newMemStore()
	laptop := store.addProduct("Laptop", 100, 5, true)
	svc := newOrderService(store, nil)

	_, err := svc.PlaceOrder(context.Background(), "u-1", PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: laptop, Quantity: 10}},
		ShippingAddress: testAddress,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INSUFFICIENT_STOCK"))
	assert.Contains(t, err.Error(), "Laptop")
	assert.Contains(t, err.Error(), "available: 5")
	assert.Equal(t, 5, store.stock(laptop))
}

func TestPlaceOrder_SecondItemFailureRollsBackFirst(t *testing.T) {
	store := newMemStore()
	laptop := store.addProduct("Laptop", 100, 5, true)
	cable := store.addProduct("Cable", 10, 1, true)
	d := &recordingDispatcher{}
	svc := newOrderService(store, d)

	_, err := svc.PlaceOrder(context.Background(), "u-1", PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: laptop, Quantity: 2},
			{ProductID: cable, Quantity: 4},
		},
		ShippingAddress: testAddress,
	})

	require.Error(t, err)
	assert.Equal(t, 5, store.stock(laptop))
	assert.Equal(t, 1, store.stock(cable))
	assert.Empty(t, store.orders)
	assert.Empty(t, d.events)
}

func TestPlaceOrder_UnavailableProduct(t *testing.T) {
	store := newMemStore()
	retired := store.addProduct("Retired", 10, 10, false)
	svc := newOrderService(store, nil)
	missing := uuid.NewString()

	tests := []struct {
		name string
		id   string
	}{
		{name: "inactive", id: retired},
		{name: "missing", id: missing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), "u-1", PlaceOrderInput{
				Items:           []OrderItemInput{{ProductID: tt.id, Quantity: 1}},
				ShippingAddress: testAddress,
			})
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, "PRODUCT_UNAVAILABLE"))
			assert.Contains(t, err.Error(), tt.id)
		})
	}
	assert.Equal(t, 10, store.stock(retired))
}

func TestPlaceOrder_ValidatesBeforeTouchingStock(t *testing.T) {
	store := newMemStore()
	id := store.addProduct("Laptop", 100, 5, true)
	svc := newOrderService(store, nil)

	_, err := svc.PlaceOrder(context.Background(), "u-1", PlaceOrderInput{ShippingAddress: testAddress})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.PlaceOrder(context.Background(), "u-1", PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: id, Quantity: 2}, {ProductID: id, Quantity: 0}},
		ShippingAddress: testAddress,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Equal(t, 5, store.stock(id))
}

func TestPlaceOrder_TotalEqualsSumOfLines(t *testing.T) {
	store := newMemStore()
	a := store.addProduct("A", 0, 10, true)
	b := store.addProduct("B", 0, 10, true)
	store.products[a] = domain.Product{ID: a, Name: "A", Price: decimal.RequireFromString("19.99"), Stock: 10, Active: true}
	store.products[b] = domain.Product{ID: b, Name: "B", Price: decimal.RequireFromString("0.10"), Stock: 10, Active: true}
	svc := newOrderService(store, nil)

	order, err := svc.PlaceOrder(context.Background(), "u-1", PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: a, Quantity: 3},
			{ProductID: b, Quantity: 7},
		},
		ShippingAddress: testAddress,
	})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, sum.Equal(order.Total))
	assert.Equal(t, "60.67", order.Total.StringFixed(2))
}

func TestPlaceOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	const (
		initialStock = 11
		qty          = 2
		buyers       = 20
	)
	store := newMemStore()
	id := store.addProduct("Consola", 500, initialStock, true)
	svc := newOrderService(store, nil)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(buyer int) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), fmt.Sprintf("u-%d", buyer), PlaceOrderInput{
				Items:           []OrderItemInput{{ProductID: id, Quantity: qty}},
				ShippingAddress: testAddress,
			})
			switch {
			case err == nil:
				successes.Add(1)
			case apperrors.IsCode(err, "INSUFFICIENT_STOCK"):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	final := store.stock(id)
	assert.GreaterOrEqual(t, final, 0)
	assert.LessOrEqual(t, int(successes.Load())*qty, initialStock)
	assert.Equal(t, initialStock-int(successes.Load())*qty, final)
	assert.Equal(t, int32(initialStock/qty), successes.Load())
	assert.Equal(t, int32(buyers), successes.Load()+rejected.Load())
	assert.Len(t, store.orders, int(successes.Load()))
}

func TestListOrders_Pagination(t *testing.T) {
	store := newMemStore()
	id := store.addProduct("Sticker", 1, 100, true)
	svc := newOrderService(store, nil)

	var placed []string
	for i := 0; i < 25; i++ {
		order, err := svc.PlaceOrder(context.Background(), "u-1", PlaceOrderInput{
			Items:           []OrderItemInput{{ProductID: id, Quantity: 1}},
			ShippingAddress: testAddress,
		})
		require.NoError(t, err)
		placed = append(placed, order.ID)
	}
	_, err := svc.PlaceOrder(context.Background(), "u-2", PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: id, Quantity: 1}},
		ShippingAddress: testAddress,
	})
	require.NoError(t, err)

	orders, page, err := svc.ListOrders(context.Background(), "u-1", 2, 10)
	require.NoError(t, err)

	assert.Equal(t, Pagination{Page: 2, Limit: 10, Total: 25, Pages: 3}, page)
	require.Len(t, orders, 10)
	// newest first: the 11th newest is placed[14]
	assert.Equal(t, placed[14], orders[0].ID)
	assert.Equal(t, placed[5], orders[9].ID)
}

func TestListOrders_Defaults(t *testing.T) {
	svc := newOrderService(newMemStore(), nil)

	orders, page, err := svc.ListOrders(context.Background(), "nobody", 0, -3)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 0, Pages: 0}, page)
}
