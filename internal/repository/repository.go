package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/modamarket/storefront/internal/domain"
)

// AdminRepository stores seller accounts
type AdminRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Admin, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
	GetByStoreName(ctx context.Context, storeName string) (*domain.Admin, error)
	Create(ctx context.Context, admin *domain.Admin) error
	UpdateStoreName(ctx context.Context, id uuid.UUID, storeName string) error
}

// ProductRepository stores seller listings
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	ListByAdminID(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*domain.Product, error)
	ListByStoreName(ctx context.Context, storeName string, limit, offset int) ([]*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStoreNameForAdmin(ctx context.Context, adminID uuid.UUID, storeName string) error
}

// OrderRepository stores recorded orders and their item snapshots
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	// ListByAdminID returns orders containing at least one of the
	// seller's items, with the item list narrowed to that seller.
	ListByAdminID(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

// Repositories bundles all repositories for injection
type Repositories struct {
	Admin   AdminRepository
	Product ProductRepository
	Order   OrderRepository
}
