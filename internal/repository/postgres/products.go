package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/pkg/errors"
)

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

const productColumns = `
	id, name, price, discount, images, category, description,
	sizes, free_shipping, admin_id, store_name, created_at, updated_at
`

func (r *productRepository) scanProduct(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Product, error) {
	var p domain.Product
	var discount decimal.NullDecimal
	var images, sizes []byte

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&discount,
		&images,
		&p.Category,
		&p.Description,
		&sizes,
		&p.FreeShipping,
		&p.AdminID,
		&p.StoreName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discount.Valid {
		p.Discount = &discount.Decimal
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := r.scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get product by ID", zap.Error(err))
		return nil, err
	}

	return p, nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	return r.queryProducts(ctx, query, limit, offset)
}

func (r *productRepository) ListByAdminID(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE admin_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return r.queryProducts(ctx, query, adminID, limit, offset)
}

func (r *productRepository) ListByStoreName(ctx context.Context, storeName string, limit, offset int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE store_name = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return r.queryProducts(ctx, query, storeName, limit, offset)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			r.logger.Error("Failed to scan product", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	now := time.Now()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}

	images, err := json.Marshal(product.Images)
	if err != nil {
		return err
	}
	sizes, err := json.Marshal(product.Sizes)
	if err != nil {
		return err
	}

	var discount decimal.NullDecimal
	if product.Discount != nil {
		discount = decimal.NullDecimal{Decimal: *product.Discount, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		discount,
		images,
		product.Category,
		product.Description,
		sizes,
		product.FreeShipping,
		product.AdminID,
		product.StoreName,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create product", zap.Error(err))
		return err
	}

	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, discount = $4, images = $5, category = $6,
		    description = $7, sizes = $8, free_shipping = $9, updated_at = $10
		WHERE id = $1
	`

	product.UpdatedAt = time.Now()

	images, err := json.Marshal(product.Images)
	if err != nil {
		return err
	}
	sizes, err := json.Marshal(product.Sizes)
	if err != nil {
		return err
	}

	var discount decimal.NullDecimal
	if product.Discount != nil {
		discount = decimal.NullDecimal{Decimal: *product.Discount, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		discount,
		images,
		product.Category,
		product.Description,
		sizes,
		product.FreeShipping,
		product.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update product", zap.Error(err))
		return err
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &errors.ErrNotFound{Resource: "product", ID: product.ID.String()}
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete product", zap.Error(err))
		return err
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}

	return nil
}

// UpdateStoreNameForAdmin rewrites the denormalized store name on all of
// a seller's products after a store rename.
func (r *productRepository) UpdateStoreNameForAdmin(ctx context.Context, adminID uuid.UUID, storeName string) error {
	query := `
		UPDATE products
		SET store_name = $2, updated_at = $3
		WHERE admin_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, adminID, storeName, time.Now())
	if err != nil {
		r.logger.Error("Failed to update products store name", zap.Error(err))
		return err
	}

	return nil
}
