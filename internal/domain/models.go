package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Admin represents a seller account that owns a store
type Admin struct {
	ID         uuid.UUID
	Email      string
	StoreName  string
	APIKeyHash string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Product represents a listing owned by a seller
type Product struct {
	ID           uuid.UUID
	Name         string
	Price        decimal.Decimal
	Discount     *decimal.Decimal // percent, 0-100; nil when no discount applies
	Images       []string
	Category     string
	Description  string
	Sizes        []string
	FreeShipping bool
	AdminID      uuid.UUID
	StoreName    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EffectivePrice returns the unit price after applying the discount, if any.
// The discount is resolved here and nowhere else.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.Discount == nil || p.Discount.IsZero() {
		return p.Price
	}
	factor := decimal.NewFromInt(100).Sub(*p.Discount).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor)
}

// CustomerDetails is the contact/address block attached to an order.
// Stored as JSONB on the orders row.
type CustomerDetails struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	Country       string `json:"country"`
	PaymentMethod string `json:"paymentMethod"`
}

// Order represents a recorded purchase across one or more sellers
type Order struct {
	ID              uuid.UUID
	Customer        string
	Total           decimal.Decimal
	Status          OrderStatus
	Date            time.Time
	CustomerDetails CustomerDetails
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is an immutable snapshot of one cart line at capture time.
// AdminID and StoreName attribute the line to its seller so multi-seller
// orders can be split per seller view.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Quantity  int
	Price     decimal.Decimal // effective unit price at capture time
	AdminID   uuid.UUID
	StoreName string
	Size      *string
	CreatedAt time.Time
}
