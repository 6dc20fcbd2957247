package service

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/notification"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory repository.Store. WithinTx snapshots the tables
// and restores them when fn fails, which is enough to observe rollbacks.
type memStore struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*domain.Product
	variants  []*domain.Variant
	customers map[uuid.UUID]*domain.Customer
	orders    map[string]*domain.Order

	failOrderCreate   error
	failFindFirst     error
	failVariantCreate error
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[uuid.UUID]*domain.Product),
		customers: make(map[uuid.UUID]*domain.Customer),
		orders:    make(map[string]*domain.Order),
	}
}

func (m *memStore) Repositories() repository.Repositories {
	return repository.Repositories{
		Products:  &memProducts{m},
		Variants:  &memVariants{m},
		Customers: &memCustomers{m},
		Orders:    &memOrders{m},
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	// BeginTx refuses a cancelled context
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	products := make(map[uuid.UUID]domain.Product, len(m.products))
	for id, p := range m.products {
		products[id] = *p
	}
	variants := append([]*domain.Variant(nil), m.variants...)
	customers := make(map[uuid.UUID]*domain.Customer, len(m.customers))
	for id, c := range m.customers {
		customers[id] = c
	}
	orders := make(map[string]*domain.Order, len(m.orders))
	for n, o := range m.orders {
		orders[n] = o
	}
	m.mu.Unlock()

	if err := fn(m.Repositories()); err != nil {
		m.mu.Lock()
		m.products = make(map[uuid.UUID]*domain.Product, len(products))
		for id, p := range products {
			p := p
			m.products[id] = &p
		}
		m.variants = variants
		m.customers = customers
		m.orders = orders
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) addProduct(p *domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) customerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.customers)
}

func (m *memStore) productCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}

func (m *memStore) order(number string) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[number]
}

func (m *memStore) inventory(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Inventory
}

type memProducts struct{ s *memStore }

func (r *memProducts) Create(ctx context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = p
	return nil
}

func (r *memProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (r *memProducts) sorted() []*domain.Product {
	out := make([]*domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memProducts) FindFirst(ctx context.Context) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failFindFirst != nil {
		return nil, r.s.failFindFirst
	}
	sorted := r.sorted()
	if len(sorted) == 0 {
		return nil, repository.ErrProductNotFound
	}
	return sorted[0], nil
}

func (r *memProducts) ListNewestFirst(ctx context.Context) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sorted := r.sorted()
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted, nil
}

func (r *memProducts) DecrementInventory(ctx context.Context, id uuid.UUID, quantity int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return 0, repository.ErrProductNotFound
	}
	if p.Inventory < quantity {
		return 0, repository.ErrInsufficientInventory
	}
	p.Inventory -= quantity
	return p.Inventory, nil
}

func (r *memProducts) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products = make(map[uuid.UUID]*domain.Product)
	return nil
}

type memVariants struct{ s *memStore }

func (r *memVariants) Create(ctx context.Context, v *domain.Variant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failVariantCreate != nil {
		return r.s.failVariantCreate
	}
	r.s.variants = append(r.s.variants, v)
	return nil
}

func (r *memVariants) FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error) {
	byProduct, _ := r.FindByProductIDs(ctx, []uuid.UUID{productID})
	if byProduct[productID] == nil {
		return []*domain.Variant{}, nil
	}
	return byProduct[productID], nil
}

func (r *memVariants) FindByProductIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*domain.Variant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make(map[uuid.UUID][]*domain.Variant)
	for _, v := range r.s.variants {
		if wanted[v.ProductID] {
			out[v.ProductID] = append(out[v.ProductID], v)
		}
	}
	return out, nil
}

func (r *memVariants) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.variants = nil
	return nil
}

type memCustomers struct{ s *memStore }

func (r *memCustomers) Create(ctx context.Context, c *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = c
	return nil
}

func (r *memCustomers) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return c, nil
}

func (r *memCustomers) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers = make(map[uuid.UUID]*domain.Customer)
	return nil
}

type memOrders struct{ s *memStore }

func (r *memOrders) Create(ctx context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failOrderCreate != nil {
		return r.s.failOrderCreate
	}
	if len(o.Items) == 0 {
		return repository.ErrOrderNoItems
	}
	r.s.orders[o.OrderNumber] = o
	return nil
}

func (r *memOrders) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders = make(map[string]*domain.Order)
	return nil
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg notification.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.OrderPlacedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}
