package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/modamarket/storefront/internal/domain"
)

// PaymentGateway is the narrow contract with the external payment widget.
// The orchestrator supplies amount and currency and receives only pass or
// fail signals; card and account details never cross this boundary.
type PaymentGateway interface {
	// CreateOrder registers a payment order for the given amount and
	// returns the widget's token for it.
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (string, error)
	// CaptureOrder confirms the transfer of funds for a previously
	// created payment order.
	CaptureOrder(ctx context.Context, paymentOrderID string) error
}

// OrderWriter records a completed order with the persistence collaborator
type OrderWriter interface {
	Create(ctx context.Context, order *domain.Order) error
}
