package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the order row and all item snapshots in one transaction
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	details, err := json.Marshal(order.CustomerDetails)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer, total, status, date, customer_details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID,
		order.Customer,
		order.Total,
		order.Status,
		order.Date,
		details,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert order", zap.Error(err))
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, quantity, price, admin_id, store_name, size, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Quantity,
			item.Price,
			item.AdminID,
			item.StoreName,
			item.Size,
			item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert order item", zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, customer, total, status, date, customer_details, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	var details []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.Customer,
		&order.Total,
		&order.Status,
		&order.Date,
		&details,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	if err := json.Unmarshal(details, &order.CustomerDetails); err != nil {
		return nil, err
	}

	items, err := r.itemsForOrders(ctx, []uuid.UUID{order.ID}, uuid.Nil)
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	query := `
		SELECT id, customer, total, status, date, customer_details, created_at, updated_at
		FROM orders
		ORDER BY date DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryOrders(ctx, query, uuid.Nil, limit, offset)
}

// ListByAdminID returns orders that include at least one of the seller's
// items, each order's item list narrowed to that seller.
func (r *orderRepository) ListByAdminID(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	query := `
		SELECT DISTINCT o.id, o.customer, o.total, o.status, o.date, o.customer_details, o.created_at, o.updated_at
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.admin_id = $3
		ORDER BY o.date DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryOrders(ctx, query, adminID, limit, offset, adminID)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, itemFilter uuid.UUID, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*domain.Order{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var order domain.Order
		var details []byte

		err := rows.Scan(
			&order.ID,
			&order.Customer,
			&order.Total,
			&order.Status,
			&order.Date,
			&details,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan order", zap.Error(err))
			return nil, err
		}
		if err := json.Unmarshal(details, &order.CustomerDetails); err != nil {
			return nil, err
		}

		orders = append(orders, &order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.itemsForOrders(ctx, ids, itemFilter)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Items = itemsByOrder[order.ID]
	}

	return orders, nil
}

// itemsForOrders loads item snapshots for the given orders. A non-nil
// adminID narrows the items to one seller.
func (r *orderRepository) itemsForOrders(ctx context.Context, orderIDs []uuid.UUID, adminID uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, quantity, price, admin_id, store_name, size, created_at
		FROM order_items
		WHERE order_id = ANY($1)
	`
	args := []interface{}{idArray(orderIDs)}

	if adminID != uuid.Nil {
		query += ` AND admin_id = $2`
		args = append(args, adminID)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		var size sql.NullString

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.Quantity,
			&item.Price,
			&item.AdminID,
			&item.StoreName,
			&size,
			&item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan order item", zap.Error(err))
			return nil, err
		}
		if size.Valid {
			item.Size = &size.String
		}

		items[item.OrderID] = append(items[item.OrderID], item)
	}

	return items, rows.Err()
}

func idArray(ids []uuid.UUID) interface{} {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}

	return nil
}
