package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/cart"
	"github.com/modamarket/storefront/internal/domain"
	pkgerrors "github.com/modamarket/storefront/pkg/errors"
)

type mockGateway struct {
	createdAmount decimal.Decimal
	createdCur    string
	createErr     error
	captureErr    error
	captured      []string
}

func (m *mockGateway) CreateOrder(_ context.Context, amount decimal.Decimal, cur string) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.createdAmount = amount
	m.createdCur = cur
	return "pay-123", nil
}

func (m *mockGateway) CaptureOrder(_ context.Context, id string) error {
	if m.captureErr != nil {
		return m.captureErr
	}
	m.captured = append(m.captured, id)
	return nil
}

type mockOrderWriter struct {
	orders []*domain.Order
	err    error
}

func (m *mockOrderWriter) Create(_ context.Context, order *domain.Order) error {
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}

func validShipping() ShippingInfo {
	return ShippingInfo{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "555-0100",
		Address:     "1 Analytical Way",
		City:        "London",
		State:       "LDN",
		ZipCode:     "E1 6AN",
		Country:     "UK",
	}
}

func newCheckoutFixture(t *testing.T) (*Orchestrator, *cart.Store, *mockGateway, *mockOrderWriter) {
	t.Helper()

	store := cart.NewStore("session", cart.NewMemoryStorage(), zap.NewNop())
	ctx := context.Background()

	discount := decimal.NewFromInt(10)
	store.AddItem(ctx, &domain.Product{
		ID:        uuid.New(),
		Name:      "Linen Dress",
		Price:     decimal.RequireFromString("50.00"),
		Discount:  &discount,
		AdminID:   uuid.New(),
		StoreName: "Atelier One",
	}, 2, nil)
	size := "M"
	store.AddItem(ctx, &domain.Product{
		ID:        uuid.New(),
		Name:      "Straw Hat",
		Price:     decimal.RequireFromString("20.00"),
		AdminID:   uuid.New(),
		StoreName: "Atelier Two",
	}, 1, &size)

	gw := &mockGateway{}
	writer := &mockOrderWriter{}
	return NewOrchestrator(store, gw, writer, zap.NewNop()), store, gw, writer
}

func TestSubmitShipping_EmptyFieldStaysCollecting(t *testing.T) {
	orch, _, _, _ := newCheckoutFixture(t)

	info := validShipping()
	info.Address = ""
	err := orch.SubmitShipping(info)

	require.Error(t, err)
	var vErr *pkgerrors.ErrValidation
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "address", vErr.Field)
	assert.Equal(t, StateCollectingShipping, orch.State())
}

func TestSubmitShipping_WhitespaceOnlyFieldRejected(t *testing.T) {
	orch, _, _, _ := newCheckoutFixture(t)

	info := validShipping()
	info.Country = "   "
	err := orch.SubmitShipping(info)

	require.Error(t, err)
	assert.Equal(t, StateCollectingShipping, orch.State())
}

func TestSubmitShipping_ValidAdvancesToAwaitingPayment(t *testing.T) {
	orch, _, _, _ := newCheckoutFixture(t)

	require.NoError(t, orch.SubmitShipping(validShipping()))
	assert.Equal(t, StateAwaitingPayment, orch.State())
}

func TestCreatePaymentOrder_RequiresShippingFirst(t *testing.T) {
	orch, _, _, _ := newCheckoutFixture(t)

	_, err := orch.CreatePaymentOrder(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateCollectingShipping, orch.State())
}

func TestCreatePaymentOrder_SendsCartTotal(t *testing.T) {
	orch, store, gw, _ := newCheckoutFixture(t)
	require.NoError(t, orch.SubmitShipping(validShipping()))

	id, err := orch.CreatePaymentOrder(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "pay-123", id)
	assert.Equal(t, "USD", gw.createdCur)
	assert.True(t, gw.createdAmount.Equal(store.Total()))
	// 2 x 50.00 at 10% off + 1 x 20.00
	assert.True(t, gw.createdAmount.Equal(decimal.RequireFromString("110.00")))
}

func TestHandleApprove_CompletesAndClearsCart(t *testing.T) {
	orch, store, gw, writer := newCheckoutFixture(t)
	ctx := context.Background()
	require.NoError(t, orch.SubmitShipping(validShipping()))

	id, err := orch.CreatePaymentOrder(ctx)
	require.NoError(t, err)

	itemCount := store.Len()
	require.NoError(t, orch.HandleApprove(ctx, id))

	assert.Equal(t, StateCompleted, orch.State())
	assert.Equal(t, []string{"pay-123"}, gw.captured)
	assert.Zero(t, store.Len())
	assert.True(t, store.Total().IsZero())

	require.Len(t, writer.orders, 1)
	order := writer.orders[0]
	assert.Len(t, order.Items, itemCount)
	assert.Equal(t, "Ada Lovelace", order.Customer)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("110.00")))
	assert.Equal(t, "PayPal", order.CustomerDetails.PaymentMethod)
}

func TestHandleApprove_PreservesSellerAttribution(t *testing.T) {
	orch, _, _, writer := newCheckoutFixture(t)
	ctx := context.Background()
	require.NoError(t, orch.SubmitShipping(validShipping()))

	id, err := orch.CreatePaymentOrder(ctx)
	require.NoError(t, err)
	require.NoError(t, orch.HandleApprove(ctx, id))

	snapshotByName := map[string]string{
		"Linen Dress": "Atelier One",
		"Straw Hat":   "Atelier Two",
	}
	require.Len(t, writer.orders, 1)
	for _, item := range writer.orders[0].Items {
		assert.NotEqual(t, uuid.Nil, item.AdminID)
		assert.Equal(t, snapshotByName[item.Name], item.StoreName)
	}
}

func TestHandleApprove_CaptureFailureStaysRetryable(t *testing.T) {
	orch, store, gw, writer := newCheckoutFixture(t)
	ctx := context.Background()
	require.NoError(t, orch.SubmitShipping(validShipping()))
	_, err := orch.CreatePaymentOrder(ctx)
	require.NoError(t, err)

	gw.captureErr = errors.New("declined")
	err = orch.HandleApprove(ctx, "pay-123")

	require.ErrorIs(t, err, ErrPaymentNotCompleted)
	assert.Equal(t, StateAwaitingPayment, orch.State())
	assert.Equal(t, 2, store.Len())
	assert.Empty(t, writer.orders)
}

func TestHandleApprove_PersistenceFailureStillCompletes(t *testing.T) {
	orch, store, _, writer := newCheckoutFixture(t)
	ctx := context.Background()
	require.NoError(t, orch.SubmitShipping(validShipping()))
	id, err := orch.CreatePaymentOrder(ctx)
	require.NoError(t, err)

	writer.err = errors.New("database down")
	// Payment took precedence: the buyer sees success even though the
	// order record was lost.
	require.NoError(t, orch.HandleApprove(ctx, id))

	assert.Equal(t, StateCompleted, orch.State())
	assert.Zero(t, store.Len())
}

func TestHandleApprove_DuplicateCallbackIgnored(t *testing.T) {
	orch, _, gw, writer := newCheckoutFixture(t)
	ctx := context.Background()
	require.NoError(t, orch.SubmitShipping(validShipping()))
	id, err := orch.CreatePaymentOrder(ctx)
	require.NoError(t, err)

	require.NoError(t, orch.HandleApprove(ctx, id))
	require.NoError(t, orch.HandleApprove(ctx, id))

	assert.Len(t, gw.captured, 1)
	assert.Len(t, writer.orders, 1)
}

func TestHandleError_StaysAwaitingPaymentAndKeepsCart(t *testing.T) {
	orch, store, _, writer := newCheckoutFixture(t)
	require.NoError(t, orch.SubmitShipping(validShipping()))

	err := orch.HandleError(errors.New("widget exploded"))

	require.ErrorIs(t, err, ErrPaymentNotCompleted)
	assert.Equal(t, StateAwaitingPayment, orch.State())
	assert.Equal(t, 2, store.Len())
	assert.Empty(t, writer.orders)
}

func TestHandleCancel_StaysAwaitingPayment(t *testing.T) {
	orch, store, _, _ := newCheckoutFixture(t)
	require.NoError(t, orch.SubmitShipping(validShipping()))

	err := orch.HandleCancel()

	require.ErrorIs(t, err, ErrPaymentNotCompleted)
	assert.Equal(t, StateAwaitingPayment, orch.State())
	assert.Equal(t, 2, store.Len())
}

func TestShippingValidationFieldOrder(t *testing.T) {
	info := ShippingInfo{
		FirstName: "A",
		Address:   "",
		City:      "B",
		ZipCode:   "C",
		Country:   "D",
	}

	err := info.Validate()
	require.Error(t, err)

	var vErr *pkgerrors.ErrValidation
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "lastName", vErr.Field)
}
