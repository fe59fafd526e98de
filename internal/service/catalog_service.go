package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/internal/repository"
	"github.com/modamarket/storefront/pkg/errors"
)

// CatalogService manages seller listings and serves buyer-facing product
// reads through the cache.
type CatalogService struct {
	repos  *repository.Repositories
	cache  ProductCache
	sfg    singleflight.Group // Prevents cache stampede on hot products
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repos *repository.Repositories, cache ProductCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repos:  repos,
		cache:  cache,
		logger: logger,
	}
}

// GetProduct returns one product, read through the cache
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(id.String(), func() (interface{}, error) {
		product, err := s.cache.Get(ctx, id)
		if err == nil {
			return product, nil
		}
		if err != ErrCacheMiss {
			s.logger.Warn("Product cache get failed", zap.Error(err))
		}

		product, err = s.repos.Product.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, product); err != nil {
			s.logger.Warn("Product cache set failed", zap.Error(err))
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Product), nil
}

// ListProducts returns the newest listings across all stores
func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	return s.repos.Product.List(ctx, limit, offset)
}

// ListStoreProducts returns one store's listings
func (s *CatalogService) ListStoreProducts(ctx context.Context, storeName string, limit, offset int) ([]*domain.Product, error) {
	return s.repos.Product.ListByStoreName(ctx, storeName, limit, offset)
}

// ListAdminProducts returns the authenticated seller's own listings
func (s *CatalogService) ListAdminProducts(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*domain.Product, error) {
	return s.repos.Product.ListByAdminID(ctx, adminID, limit, offset)
}

// CreateProduct adds a listing under the seller's store. The seller must
// have named their store first.
func (s *CatalogService) CreateProduct(ctx context.Context, admin *domain.Admin, product *domain.Product) error {
	if admin.StoreName == "" {
		return &errors.ErrValidation{Field: "store_name", Message: "set your store name before adding products"}
	}

	product.AdminID = admin.ID
	product.StoreName = admin.StoreName

	return s.repos.Product.Create(ctx, product)
}

// UpdateProduct modifies a listing the seller owns
func (s *CatalogService) UpdateProduct(ctx context.Context, admin *domain.Admin, product *domain.Product) error {
	existing, err := s.repos.Product.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	if existing.AdminID != admin.ID {
		return &errors.ErrUnauthorized{Message: "product belongs to another store"}
	}

	product.AdminID = existing.AdminID
	product.StoreName = existing.StoreName
	if err := s.repos.Product.Update(ctx, product); err != nil {
		return err
	}

	s.invalidate(ctx, product.ID)
	return nil
}

// DeleteProduct removes a listing the seller owns
func (s *CatalogService) DeleteProduct(ctx context.Context, admin *domain.Admin, id uuid.UUID) error {
	existing, err := s.repos.Product.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AdminID != admin.ID {
		return &errors.ErrUnauthorized{Message: "product belongs to another store"}
	}

	if err := s.repos.Product.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

// RenameStore changes the seller's store name and rewrites it on all of
// their listings.
func (s *CatalogService) RenameStore(ctx context.Context, admin *domain.Admin, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &errors.ErrValidation{Field: "store_name", Message: "must not be empty"}
	}

	if existing, err := s.repos.Admin.GetByStoreName(ctx, name); err == nil && existing.ID != admin.ID {
		return &errors.ErrValidation{Field: "store_name", Message: "already taken"}
	}

	if err := s.repos.Admin.UpdateStoreName(ctx, admin.ID, name); err != nil {
		return err
	}
	if err := s.repos.Product.UpdateStoreNameForAdmin(ctx, admin.ID, name); err != nil {
		return err
	}

	// Renamed products are stale in the cache until their entries drop
	products, err := s.repos.Product.ListByAdminID(ctx, admin.ID, 1000, 0)
	if err != nil {
		s.logger.Warn("Failed to list products for cache invalidation", zap.Error(err))
		return nil
	}
	for _, p := range products {
		s.invalidate(ctx, p.ID)
	}

	admin.StoreName = name
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("Product cache invalidate failed",
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
	}
}
