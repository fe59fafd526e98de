package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/internal/notify"
	"github.com/modamarket/storefront/internal/repository"
	"github.com/modamarket/storefront/pkg/errors"
)

// OrderService records orders and serves buyer-wide and per-seller views.
// It implements checkout.OrderWriter.
type OrderService struct {
	repos  *repository.Repositories
	hub    *notify.Hub
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, hub *notify.Hub, logger *zap.Logger) *OrderService {
	return &OrderService{
		repos:  repos,
		hub:    hub,
		logger: logger,
	}
}

// Create durably records an order and notifies subscribers
func (s *OrderService) Create(ctx context.Context, order *domain.Order) error {
	if err := s.repos.Order.Create(ctx, order); err != nil {
		return err
	}

	s.hub.Publish(order)
	return nil
}

// Get returns one order with all its items
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repos.Order.GetByID(ctx, id)
}

// List returns all orders, newest first
func (s *OrderService) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	return s.repos.Order.List(ctx, limit, offset)
}

// ListForAdmin returns the seller's view: orders containing at least one
// of their items, with the item list narrowed to that seller.
func (s *OrderService) ListForAdmin(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	orders, err := s.repos.Order.ListByAdminID(ctx, adminID, limit, offset)
	if err != nil {
		return nil, err
	}

	// The repository narrows items in SQL; drop any order left empty
	filtered := orders[:0]
	for _, order := range orders {
		if len(order.Items) > 0 {
			filtered = append(filtered, order)
		}
	}

	return filtered, nil
}

// UpdateStatus applies a seller-initiated status transition
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	if !status.IsValid() {
		return &errors.ErrValidation{Field: "status", Message: "unknown status"}
	}

	order, err := s.repos.Order.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !order.Status.CanTransitionTo(status) {
		return &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   status,
		}
	}

	if err := s.repos.Order.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	order.Status = status
	s.hub.Publish(order)
	return nil
}
