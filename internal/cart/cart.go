package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/pkg/errors"
)

// LineItem is one product's entry in the cart
type LineItem struct {
	ProductID uuid.UUID        `json:"productId"`
	Name      string           `json:"name"`
	UnitPrice decimal.Decimal  `json:"price"`
	Discount  *decimal.Decimal `json:"discount,omitempty"`
	Quantity  int              `json:"quantity"`
	Size      *string          `json:"size,omitempty"`
	Image     string           `json:"image,omitempty"`
	AdminID   uuid.UUID        `json:"adminId"`
	StoreName string           `json:"storeName"`
}

// EffectivePrice returns the unit price after applying the discount, if any
func (i *LineItem) EffectivePrice() decimal.Decimal {
	if i.Discount == nil || i.Discount.IsZero() {
		return i.UnitPrice
	}
	factor := decimal.NewFromInt(100).Sub(*i.Discount).Div(decimal.NewFromInt(100))
	return i.UnitPrice.Mul(factor)
}

// State is the serialized cart shape: {items, total}
type State struct {
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Store maintains the authoritative cart for one buyer session and keeps
// it synchronized with durable storage. The total is maintained by delta
// on every mutation and must always equal a fresh recomputation from the
// line items.
type Store struct {
	mu      sync.Mutex
	key     string
	state   State
	storage Storage
	logger  *zap.Logger
}

// NewStore creates an empty cart store persisted under the given session key
func NewStore(key string, storage Storage, logger *zap.Logger) *Store {
	return &Store{
		key:     key,
		state:   State{Items: []LineItem{}, Total: decimal.Zero},
		storage: storage,
		logger:  logger,
	}
}

// Load reads persisted state. Missing or corrupt state falls back to an
// empty cart; Load never returns an error to the caller.
func (s *Store) Load(ctx context.Context) {
	state, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if err != ErrStateNotFound {
			s.logger.Warn("Failed to load cart, starting empty",
				zap.String("key", s.key),
				zap.Error(err),
			)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state.Items == nil {
		state.Items = []LineItem{}
	}
	s.state = *state
}

// AddItem inserts a new line item for the product, or merges into the
// existing one: quantities are summed and the size is overwritten when a
// new one is supplied. Quantity is assumed >= 1 by caller contract.
func (s *Store) AddItem(ctx context.Context, product *domain.Product, quantity int, size *string) {
	item := LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Discount:  product.Discount,
		Quantity:  quantity,
		Size:      size,
		AdminID:   product.AdminID,
		StoreName: product.StoreName,
	}
	if len(product.Images) > 0 {
		item.Image = product.Images[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(product.ID); idx >= 0 {
		s.state.Items[idx].Quantity += quantity
		if size != nil {
			s.state.Items[idx].Size = size
		}
	} else {
		s.state.Items = append(s.state.Items, item)
	}
	s.state.Total = s.state.Total.Add(item.EffectivePrice().Mul(decimal.NewFromInt(int64(quantity))))

	s.persist(ctx)
}

// RemoveItem deletes the line item if present. Removing an absent product
// is a no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, productID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return
	}

	item := s.state.Items[idx]
	s.state.Items = append(s.state.Items[:idx], s.state.Items[idx+1:]...)
	s.state.Total = s.state.Total.Sub(item.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity))))

	s.persist(ctx)
}

// UpdateQuantity replaces the item's quantity. Negative quantities and
// unknown products leave the state unchanged and return a validation
// error. A quantity of zero removes the item: keeping a zero-quantity
// line would break the quantity >= 1 invariant.
func (s *Store) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return &errors.ErrValidation{Field: "quantity", Message: "must not be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return &errors.ErrNotFound{Resource: "cart item", ID: productID.String()}
	}

	item := &s.state.Items[idx]
	diff := quantity - item.Quantity
	s.state.Total = s.state.Total.Add(item.EffectivePrice().Mul(decimal.NewFromInt(int64(diff))))

	if quantity == 0 {
		s.state.Items = append(s.state.Items[:idx], s.state.Items[idx+1:]...)
	} else {
		item.Quantity = quantity
	}

	s.persist(ctx)
	return nil
}

// UpdateSize replaces the chosen size; the total is unaffected
func (s *Store) UpdateSize(ctx context.Context, productID uuid.UUID, size string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return &errors.ErrNotFound{Resource: "cart item", ID: productID.String()}
	}

	s.state.Items[idx].Size = &size
	s.persist(ctx)
	return nil
}

// Clear empties the cart and resets the total to zero
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{Items: []LineItem{}, Total: decimal.Zero}
	s.persist(ctx)
}

// Snapshot returns a copy of the current cart state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]LineItem, len(s.state.Items))
	copy(items, s.state.Items)
	return State{Items: items, Total: s.state.Total}
}

// Total returns the current maintained total
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Total
}

// Len returns the number of line items
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Items)
}

// indexOf requires s.mu held
func (s *Store) indexOf(productID uuid.UUID) int {
	for i := range s.state.Items {
		if s.state.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// persist requires s.mu held. Storage failures are logged, never
// surfaced: the in-memory state is authoritative within the session.
func (s *Store) persist(ctx context.Context) {
	state := State{Items: s.state.Items, Total: s.state.Total}
	if err := s.storage.Set(ctx, s.key, &state); err != nil {
		s.logger.Warn("Failed to persist cart",
			zap.String("key", s.key),
			zap.Error(err),
		)
	}
}
