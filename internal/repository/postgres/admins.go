package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/pkg/errors"
)

type adminRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *sql.DB, logger *zap.Logger) *adminRepository {
	return &adminRepository{
		db:     db,
		logger: logger,
	}
}

func (r *adminRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Admin, error) {
	// bcrypt hashes are salted, so there is no direct lookup: iterate
	// active sellers and verify the key against each hash.
	query := `
		SELECT id, email, store_name, api_key_hash, is_active, created_at, updated_at
		FROM admins
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query admins", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var admin domain.Admin
		var storeName sql.NullString

		err := rows.Scan(
			&admin.ID,
			&admin.Email,
			&storeName,
			&admin.APIKeyHash,
			&admin.IsActive,
			&admin.CreatedAt,
			&admin.UpdatedAt,
		)
		if err != nil {
			continue
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.APIKeyHash), []byte(apiKey)); err == nil {
			admin.StoreName = storeName.String
			return &admin, nil
		}
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r *adminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	query := `
		SELECT id, email, store_name, api_key_hash, is_active, created_at, updated_at
		FROM admins
		WHERE id = $1
	`

	var admin domain.Admin
	var storeName sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&admin.ID,
		&admin.Email,
		&storeName,
		&admin.APIKeyHash,
		&admin.IsActive,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "admin", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get admin by ID", zap.Error(err))
		return nil, err
	}

	admin.StoreName = storeName.String
	return &admin, nil
}

func (r *adminRepository) GetByStoreName(ctx context.Context, name string) (*domain.Admin, error) {
	query := `
		SELECT id, email, store_name, api_key_hash, is_active, created_at, updated_at
		FROM admins
		WHERE store_name = $1
	`

	var admin domain.Admin
	var storeName sql.NullString

	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&admin.ID,
		&admin.Email,
		&storeName,
		&admin.APIKeyHash,
		&admin.IsActive,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "store", ID: name}
	}
	if err != nil {
		r.logger.Error("Failed to get admin by store name", zap.Error(err))
		return nil, err
	}

	admin.StoreName = storeName.String
	return &admin, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (id, email, store_name, api_key_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	if admin.UpdatedAt.IsZero() {
		admin.UpdatedAt = now
	}

	var storeName sql.NullString
	if admin.StoreName != "" {
		storeName = sql.NullString{String: admin.StoreName, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		admin.ID,
		admin.Email,
		storeName,
		admin.APIKeyHash,
		admin.IsActive,
		admin.CreatedAt,
		admin.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create admin", zap.Error(err))
		return err
	}

	return nil
}

func (r *adminRepository) UpdateStoreName(ctx context.Context, id uuid.UUID, storeName string) error {
	query := `
		UPDATE admins
		SET store_name = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, storeName, time.Now())
	if err != nil {
		r.logger.Error("Failed to update store name", zap.Error(err))
		return err
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &errors.ErrNotFound{Resource: "admin", ID: id.String()}
	}

	return nil
}
