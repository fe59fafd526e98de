package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/domain"
)

type failingStorage struct {
	getErr error
	setErr error
}

func (f *failingStorage) Get(context.Context, string) (*State, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return nil, ErrStateNotFound
}

func (f *failingStorage) Set(context.Context, string, *State) error {
	return f.setErr
}

func (f *failingStorage) Delete(context.Context, string) error {
	return nil
}

func newTestProduct(name string, price string, discount *string, adminID uuid.UUID) *domain.Product {
	p := &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		AdminID:   adminID,
		StoreName: "Test Store",
	}
	if discount != nil {
		d := decimal.RequireFromString(*discount)
		p.Discount = &d
	}
	return p
}

// recompute derives the total fresh from the line items
func recompute(state State) decimal.Decimal {
	total := decimal.Zero
	for _, item := range state.Items {
		total = total.Add(item.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore("session-1", NewMemoryStorage(), zap.NewNop())
}

func TestAddItem_MergesQuantities(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProduct("Linen Shirt", "40.00", nil, uuid.New())

	store.AddItem(ctx, p, 2, nil)
	size := "M"
	store.AddItem(ctx, p, 3, &size)

	state := store.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 5, state.Items[0].Quantity)
	require.NotNil(t, state.Items[0].Size)
	assert.Equal(t, "M", *state.Items[0].Size)
	assert.True(t, state.Total.Equal(decimal.RequireFromString("200.00")))
}

func TestAddItem_KeepsExistingSizeWhenNoneSupplied(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProduct("Wool Coat", "120.00", nil, uuid.New())

	size := "L"
	store.AddItem(ctx, p, 1, &size)
	store.AddItem(ctx, p, 1, nil)

	state := store.Snapshot()
	require.Len(t, state.Items, 1)
	require.NotNil(t, state.Items[0].Size)
	assert.Equal(t, "L", *state.Items[0].Size)
}

func TestRemoveItem_SubtractsContribution(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p1 := newTestProduct("Silk Scarf", "25.50", nil, uuid.New())
	p2 := newTestProduct("Denim Jacket", "80.00", nil, uuid.New())

	store.AddItem(ctx, p1, 2, nil)
	store.AddItem(ctx, p2, 1, nil)
	before := store.Total()

	store.RemoveItem(ctx, p1.ID)

	state := store.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, p2.ID, state.Items[0].ProductID)
	assert.True(t, state.Total.Equal(before.Sub(decimal.RequireFromString("51.00"))))
}

func TestRemoveItem_AbsentIsNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProduct("Leather Belt", "30.00", nil, uuid.New())

	store.AddItem(ctx, p, 1, nil)
	store.RemoveItem(ctx, uuid.New())

	state := store.Snapshot()
	assert.Len(t, state.Items, 1)
	assert.True(t, state.Total.Equal(decimal.RequireFromString("30.00")))
}

func TestUpdateQuantity_AdjustsTotalByDelta(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProduct("Canvas Tote", "15.00", nil, uuid.New())

	store.AddItem(ctx, p, 2, nil)
	require.NoError(t, store.UpdateQuantity(ctx, p.ID, 5))

	state := store.Snapshot()
	assert.Equal(t, 5, state.Items[0].Quantity)
	assert.True(t, state.Total.Equal(decimal.RequireFromString("75.00")))
}

func TestUpdateQuantity_NegativeLeavesStateUnchanged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProduct("Knit Beanie", "12.00", nil, uuid.New())

	store.AddItem(ctx, p, 3, nil)
	before := store.Snapshot()

	err := store.UpdateQuantity(ctx, p.ID, -1)
	require.Error(t, err)

	after := store.Snapshot()
	assert.Equal(t, before.Items, after.Items)
	assert.True(t, before.Total.Equal(after.Total))
}

func TestUpdateQuantity_UnknownProduct(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateQuantity(context.Background(), uuid.New(), 2)
	require.Error(t, err)
	assert.True(t, store.Total().IsZero())
}

func TestUpdateQuantity_ZeroRemovesItem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProduct("Pleated Skirt", "45.00", nil, uuid.New())

	store.AddItem(ctx, p, 2, nil)
	require.NoError(t, store.UpdateQuantity(ctx, p.ID, 0))

	state := store.Snapshot()
	assert.Empty(t, state.Items)
	assert.True(t, state.Total.IsZero())
}

func TestUpdateSize_DoesNotAffectTotal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProduct("Oxford Shirt", "55.00", nil, uuid.New())

	store.AddItem(ctx, p, 1, nil)
	before := store.Total()

	require.NoError(t, store.UpdateSize(ctx, p.ID, "XL"))

	state := store.Snapshot()
	require.NotNil(t, state.Items[0].Size)
	assert.Equal(t, "XL", *state.Items[0].Size)
	assert.True(t, state.Total.Equal(before))
}

func TestClear_ResetsItemsAndTotal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.AddItem(ctx, newTestProduct("A", "10.00", nil, uuid.New()), 2, nil)
	store.AddItem(ctx, newTestProduct("B", "20.00", nil, uuid.New()), 1, nil)

	store.Clear(ctx)

	state := store.Snapshot()
	assert.Empty(t, state.Items)
	assert.True(t, state.Total.IsZero())
}

// Total must never drift from a fresh recomputation, whatever the
// operation sequence.
func TestTotalConsistencyAcrossOperationSequence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	discount := "25"
	p1 := newTestProduct("P1", "19.99", &discount, uuid.New())
	p2 := newTestProduct("P2", "7.50", nil, uuid.New())
	p3 := newTestProduct("P3", "130.00", nil, uuid.New())

	store.AddItem(ctx, p1, 3, nil)
	store.AddItem(ctx, p2, 1, nil)
	store.AddItem(ctx, p1, 2, nil)
	require.NoError(t, store.UpdateQuantity(ctx, p2.ID, 4))
	store.AddItem(ctx, p3, 1, nil)
	store.RemoveItem(ctx, p1.ID)
	require.NoError(t, store.UpdateQuantity(ctx, p3.ID, 0))
	require.NoError(t, store.UpdateSize(ctx, p2.ID, "S"))

	state := store.Snapshot()
	assert.True(t, state.Total.Equal(recompute(state)),
		"maintained total %s != recomputed %s", state.Total, recompute(state))
}

// End-to-end scenario from the order flow: discounted item, plain item,
// removal, clear.
func TestDiscountedTotalScenario(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	discount := "10"
	p1 := newTestProduct("P1", "50.00", &discount, uuid.New())
	p2 := newTestProduct("P2", "20.00", nil, uuid.New())

	store.AddItem(ctx, p1, 2, nil)
	assert.True(t, store.Total().Equal(decimal.RequireFromString("90.00")))

	store.AddItem(ctx, p2, 1, nil)
	assert.True(t, store.Total().Equal(decimal.RequireFromString("110.00")))

	store.RemoveItem(ctx, p1.ID)
	assert.True(t, store.Total().Equal(decimal.RequireFromString("20.00")))

	store.Clear(ctx)
	assert.True(t, store.Total().IsZero())
	assert.Empty(t, store.Snapshot().Items)
}

func TestLoad_RoundTripsPersistedState(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	store := NewStore("session-42", storage, zap.NewNop())
	size := "S"
	store.AddItem(ctx, newTestProduct("Trench Coat", "199.00", nil, uuid.New()), 1, &size)

	reloaded := NewStore("session-42", storage, zap.NewNop())
	reloaded.Load(ctx)

	state := reloaded.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "Trench Coat", state.Items[0].Name)
	assert.True(t, state.Total.Equal(decimal.RequireFromString("199.00")))
	assert.True(t, state.Total.Equal(recompute(state)))
}

func TestLoad_FailsSoftOnStorageError(t *testing.T) {
	store := NewStore("s", &failingStorage{getErr: errors.New("boom")}, zap.NewNop())
	store.Load(context.Background())

	assert.Empty(t, store.Snapshot().Items)
	assert.True(t, store.Total().IsZero())
}

func TestMutationsSurvivePersistFailure(t *testing.T) {
	store := NewStore("s", &failingStorage{setErr: errors.New("boom")}, zap.NewNop())
	ctx := context.Background()
	p := newTestProduct("Cardigan", "60.00", nil, uuid.New())

	store.AddItem(ctx, p, 1, nil)

	state := store.Snapshot()
	require.Len(t, state.Items, 1)
	assert.True(t, state.Total.Equal(decimal.RequireFromString("60.00")))
}

func TestManager_ReturnsSameStorePerSession(t *testing.T) {
	mgr := NewManager(NewMemoryStorage(), zap.NewNop())
	ctx := context.Background()

	a := mgr.Get(ctx, "alpha")
	b := mgr.Get(ctx, "alpha")
	c := mgr.Get(ctx, "beta")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestManager_LoadsPersistedStateOnFirstAccess(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	seed := NewStore("gamma", storage, zap.NewNop())
	seed.AddItem(ctx, newTestProduct("Loafers", "85.00", nil, uuid.New()), 2, nil)

	mgr := NewManager(storage, zap.NewNop())
	store := mgr.Get(ctx, "gamma")

	assert.Equal(t, 1, store.Len())
	assert.True(t, store.Total().Equal(decimal.RequireFromString("170.00")))
}
