package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// ErrStatusChanged is returned by TransitionStatus when the stored status no
// longer matches the expected one.
var ErrStatusChanged = errors.New("order status changed concurrently")

// PaymentMethodCOD is the only supported payment method.
const PaymentMethodCOD = "COD"

// Order is a placed customer order. Line items are snapshots captured at
// order time: later product edits never change historical orders. Status is
// the only field mutated after creation; orders are never deleted.
type Order struct {
	ID            string
	Items         []Item
	Customer      Customer
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Status        Status
	CreatedAt     time.Time
	DeliveredAt   *time.Time
}

// Item is an order line: a point-in-time snapshot of the product plus the
// ordered quantity.
type Item struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Image     string
}

// Customer holds the contact and shipping details captured at checkout.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	State   string
	Pincode string
}

// Repository defines persistence operations for orders. TransitionStatus is
// conditional on the expected current status so concurrent transitions
// cannot silently overwrite each other; it returns ErrStatusChanged when the
// guard fails and ErrNotFound when the order does not exist.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByEmail(ctx context.Context, email string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	TransitionStatus(ctx context.Context, id string, from, to Status, deliveredAt *time.Time) error
}
