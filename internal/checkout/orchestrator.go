package checkout

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/cart"
	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/pkg/errors"
)

// State is the orchestrator's position in the checkout flow
type State string

const (
	StateCollectingShipping State = "CollectingShipping"
	StateAwaitingPayment    State = "AwaitingPayment"
	StateCompleted          State = "Completed"
)

const currency = "USD"

// ErrPaymentNotCompleted is returned when the payment widget reports an
// error or a user cancellation. The attempt is retryable: the orchestrator
// stays in AwaitingPayment and the cart is untouched.
var ErrPaymentNotCompleted = goerrors.New("payment was not completed")

// ShippingInfo is the checkout form. Every field must be a non-empty
// trimmed string before payment can begin. It is discarded after the
// order record it produces.
type ShippingInfo struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`
}

// Validate returns a field-naming error for the first empty field
func (s *ShippingInfo) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"email", s.Email},
		{"phoneNumber", s.PhoneNumber},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"zipCode", s.ZipCode},
		{"country", s.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &errors.ErrValidation{Field: f.name, Message: "must not be empty"}
		}
	}
	return nil
}

// Orchestrator drives one checkout attempt from intent-to-buy to recorded
// order: shipping form, external payment capture, order persistence, cart
// clear. It is short-lived, one per checkout surface.
type Orchestrator struct {
	mu             sync.Mutex
	state          State
	cart           *cart.Store
	shipping       ShippingInfo
	paymentOrderID string
	gateway        PaymentGateway
	orders         OrderWriter
	logger         *zap.Logger
}

func NewOrchestrator(cartStore *cart.Store, gateway PaymentGateway, orders OrderWriter, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		state:   StateCollectingShipping,
		cart:    cartStore,
		gateway: gateway,
		orders:  orders,
		logger:  logger,
	}
}

// State returns the orchestrator's current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SubmitShipping validates the shipping form and advances to
// AwaitingPayment. On validation failure the orchestrator stays in
// CollectingShipping and the error names the offending field.
func (o *Orchestrator) SubmitShipping(info ShippingInfo) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateCollectingShipping {
		return &errors.ErrInvalidStateTransition{From: o.state, To: StateAwaitingPayment}
	}
	if err := info.Validate(); err != nil {
		return err
	}

	o.shipping = info
	o.state = StateAwaitingPayment
	return nil
}

// CreatePaymentOrder asks the widget to register a payment order for the
// cart's current total. Only legal while awaiting payment.
func (o *Orchestrator) CreatePaymentOrder(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAwaitingPayment {
		return "", &errors.ErrInvalidStateTransition{From: o.state, To: StateAwaitingPayment}
	}

	id, err := o.gateway.CreateOrder(ctx, o.cart.Total(), currency)
	if err != nil {
		return "", fmt.Errorf("create payment order: %w", err)
	}

	o.paymentOrderID = id
	return id, nil
}

// HandleApprove is the widget's approval callback. It captures the
// payment and, on capture success, records the order, clears the cart and
// completes. A second callback after completion is ignored.
func (o *Orchestrator) HandleApprove(ctx context.Context, paymentOrderID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateCompleted {
		// The widget fires at most one callback per attempt, but a
		// duplicate must not double-submit the order.
		o.logger.Warn("Ignoring duplicate payment approval",
			zap.String("payment_order_id", paymentOrderID),
		)
		return nil
	}
	if o.state != StateAwaitingPayment {
		return &errors.ErrInvalidStateTransition{From: o.state, To: StateCompleted}
	}

	if err := o.gateway.CaptureOrder(ctx, paymentOrderID); err != nil {
		o.logger.Error("Payment capture failed",
			zap.String("payment_order_id", paymentOrderID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrPaymentNotCompleted, err)
	}

	order := o.buildOrder()
	if err := o.orders.Create(ctx, order); err != nil {
		// Payment is already captured and cannot be undone from this
		// layer, so the buyer still gets a success. The gap between
		// payment and bookkeeping is logged for manual reconciliation.
		o.logger.Error("Order persistence failed after payment capture",
			zap.String("payment_order_id", paymentOrderID),
			zap.String("customer", order.Customer),
			zap.String("total", order.Total.String()),
			zap.Error(err),
		)
	}

	o.cart.Clear(ctx)
	o.state = StateCompleted
	return nil
}

// HandleError is the widget's payment-error callback. The attempt stays
// retryable; the cart is not mutated.
func (o *Orchestrator) HandleError(cause error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAwaitingPayment {
		return &errors.ErrInvalidStateTransition{From: o.state, To: StateAwaitingPayment}
	}

	o.logger.Warn("Payment widget reported an error", zap.Error(cause))
	return fmt.Errorf("%w: %v", ErrPaymentNotCompleted, cause)
}

// HandleCancel is the widget's user-cancellation callback
func (o *Orchestrator) HandleCancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAwaitingPayment {
		return &errors.ErrInvalidStateTransition{From: o.state, To: StateAwaitingPayment}
	}

	return ErrPaymentNotCompleted
}

// buildOrder synthesizes the order aggregate from the cart snapshot and
// the shipping form, one order line per cart line with its seller
// attribution. Requires o.mu held.
func (o *Orchestrator) buildOrder() *domain.Order {
	state := o.cart.Snapshot()

	items := make([]domain.OrderItem, 0, len(state.Items))
	for _, line := range state.Items {
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.EffectivePrice(),
			AdminID:   line.AdminID,
			StoreName: line.StoreName,
			Size:      line.Size,
		})
	}

	return &domain.Order{
		ID:       uuid.New(),
		Customer: o.shipping.FirstName + " " + o.shipping.LastName,
		Total:    state.Total,
		Status:   domain.OrderStatusPending,
		Date:     time.Now().UTC(),
		CustomerDetails: domain.CustomerDetails{
			FirstName:     o.shipping.FirstName,
			LastName:      o.shipping.LastName,
			Email:         o.shipping.Email,
			PhoneNumber:   o.shipping.PhoneNumber,
			Address:       o.shipping.Address,
			City:          o.shipping.City,
			State:         o.shipping.State,
			ZipCode:       o.shipping.ZipCode,
			Country:       o.shipping.Country,
			PaymentMethod: "PayPal",
		},
		Items: items,
	}
}
