package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
)

// memStore is an in-memory repository.Store. WithinTx serialises
// transactions, the way the row lock taken by the conditional UPDATE does,
// snapshots state and restores it when fn fails.
type memStore struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	users    map[string]domain.User
	products map[string]domain.Product
	orders   []domain.Order
	clock    time.Time
	failList error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]domain.User{},
		products: map[string]domain.Product{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addProduct(name string, price int64, stock int, active bool) string {
	id := uuid.NewString()
	m.products[id] = domain.Product{ID: id, Name: name, Price: decimal.NewFromInt(price), Stock: stock, Active: active, Image: "img"}
	return id
}

func (m *memStore) stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStore) Users() repository.UserRepository       { return memUsers{m} }
func (m *memStore) Products() repository.ProductRepository { return memProducts{m} }
func (m *memStore) Orders() repository.OrderRepository     { return memOrders{m} }

func (m *memStore) WithinTx(ctx context.Context, fn func(context.Context, repository.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	users := cloneMap(m.users)
	products := cloneMap(m.products)
	orders := append([]domain.Order(nil), m.orders...)
	m.mu.Unlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.users, m.products, m.orders = users, products, orders
		m.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.m.clock
	user.UpdatedAt = r.m.clock
	r.m.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.PasswordHash = ""
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memProducts struct{ m *memStore }

func (r memProducts) Create(_ context.Context, p *domain.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = uuid.NewString()
	r.m.products[p.ID] = *p
	return nil
}

func (r memProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r memProducts) List(_ context.Context, f repository.ProductFilter) ([]domain.Product, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failList != nil {
		return nil, 0, r.m.failList
	}
	var all []domain.Product
	for _, p := range r.m.products {
		if f.ActiveOnly && !p.Active {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if f.Offset >= total {
		return []domain.Product{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return all[f.Offset:end], total, nil
}

func (r memProducts) ReserveStock(_ context.Context, id string, qty int) (*domain.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok || !p.Active {
		return nil, domain.ErrProductUnavailable
	}
	if p.Stock < qty {
		return nil, &domain.InsufficientStockError{ProductID: id, ProductName: p.Name, Available: p.Stock, Requested: qty}
	}
	p.Stock -= qty
	r.m.products[id] = p
	return &p, nil
}

type memOrders struct{ m *memStore }

func (r memOrders) Create(_ context.Context, order *domain.Order) error {
	if !order.Total.Equal(order.ItemsTotal()) {
		return domain.ErrTotalMismatch
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	order.ID = uuid.NewString()
	r.m.clock = r.m.clock.Add(time.Minute)
	order.CreatedAt = r.m.clock
	order.UpdatedAt = r.m.clock
	r.m.orders = append(r.m.orders, *order)
	return nil
}

func (r memOrders) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Order, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var mine []domain.Order
	for i := len(r.m.orders) - 1; i >= 0; i-- {
		if r.m.orders[i].UserID == userID {
			mine = append(mine, r.m.orders[i])
		}
	}
	total := len(mine)
	if offset >= total {
		return []domain.Order{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

// memAttempts is an in-memory repository.LoginAttemptStore.
type memAttempts struct {
	counts map[string]int
	err    error
}

func newMemAttempts() *memAttempts { return &memAttempts{counts: map[string]int{}} }

func (a *memAttempts) Failures(_ context.Context, email string) (int, error) {
	if a.err != nil {
		return 0, a.err
	}
	return a.counts[email], nil
}

func (a *memAttempts) RecordFailure(_ context.Context, email string, _ time.Duration) (int, error) {
	if a.err != nil {
		return 0, a.err
	}
	a.counts[email]++
	return a.counts[email], nil
}

func (a *memAttempts) Reset(_ context.Context, email string) error {
	if a.err != nil {
		return a.err
	}
	delete(a.counts, email)
	return nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

var errStoreDown = errors.New("store down")
