package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/pkg/errors"
)

type mockAdminRepo struct {
	mu     sync.Mutex
	admins map[uuid.UUID]*domain.Admin
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[uuid.UUID]*domain.Admin)}
}

func (m *mockAdminRepo) GetByAPIKey(context.Context, string) (*domain.Admin, error) {
	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (m *mockAdminRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return nil, &errors.ErrNotFound{Resource: "admin", ID: id.String()}
}

func (m *mockAdminRepo) GetByStoreName(_ context.Context, name string) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.StoreName == name {
			return a, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "store", ID: name}
}

func (m *mockAdminRepo) Create(_ context.Context, admin *domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[admin.ID] = admin
	return nil
}

func (m *mockAdminRepo) UpdateStoreName(_ context.Context, id uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "admin", ID: id.String()}
	}
	a.StoreName = name
	return nil
}

type mockProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
	getCalls int
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if p, ok := m.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
}

func (m *mockProductRepo) List(context.Context, int, int) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductRepo) ListByAdminID(_ context.Context, adminID uuid.UUID, _, _ int) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.products {
		if p.AdminID == adminID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) ListByStoreName(_ context.Context, storeName string, _, _ int) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.products {
		if p.StoreName == storeName {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return &errors.ErrNotFound{Resource: "product", ID: p.ID.String()}
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) UpdateStoreNameForAdmin(_ context.Context, adminID uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.AdminID == adminID {
			p.StoreName = name
		}
	}
	return nil
}

type mockOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*domain.Order
	createErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (m *mockOrderRepo) List(context.Context, int, int) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Order{}
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderRepo) ListByAdminID(_ context.Context, adminID uuid.UUID, _, _ int) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Order{}
	for _, o := range m.orders {
		items := []domain.OrderItem{}
		for _, item := range o.Items {
			if item.AdminID == adminID {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		cp := *o
		cp.Items = items
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	o.Status = status
	return nil
}

type mockProductCache struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
	getErr   error
}

func newMockProductCache() *mockProductCache {
	return &mockProductCache{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductCache) Get(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, ErrCacheMiss
}

func (m *mockProductCache) Set(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *mockProductCache) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}
