package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhruvnair/bazaarkart/internal/domain/cart"
	"github.com/dhruvnair/bazaarkart/internal/domain/catalog"
)

// Sentinel errors for order validation.
var ErrEmptyItems = errors.New("items required")

// ProductNotFoundError indicates a requested product exists in no catalog
// source.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// StockAdjuster decrements product stock, clamped at zero, atomically.
type StockAdjuster interface {
	DecrementStock(ctx context.Context, id string, quantity int) (*catalog.Product, error)
}

// EventPublisher emits order lifecycle events. Implementations must be safe
// to call concurrently; failures are logged by the service, never surfaced.
type EventPublisher interface {
	OrderCreated(ctx context.Context, o *Order) error
	OrderStatusChanged(ctx context.Context, o *Order, from Status) error
}

// ItemRequest is a single requested line: product reference plus quantity.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items    []ItemRequest
	Customer Customer
}

// Service encapsulates order placement and the status lifecycle.
type Service struct {
	catalog catalog.Reader
	stock   StockAdjuster
	orders  Repository
	events  EventPublisher
	pricer  cart.Pricer
	now     func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	cat catalog.Reader,
	stock StockAdjuster,
	orders Repository,
	events EventPublisher,
	pricer cart.Pricer,
) *Service {
	return &Service{
		catalog: cat,
		stock:   stock,
		orders:  orders,
		events:  events,
		pricer:  pricer,
		now:     time.Now,
	}
}

// PlaceOrder validates the request, merges duplicate selections, snapshots
// product fields into line items, prices the cart, persists the order with
// the initial status, decrements stock, and publishes an order-created event.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
	}

	lines, err := s.buildLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	totals := s.pricer.Totals(lines)
	now := s.now().UTC()

	// Emails key the customer order list; store them case-folded.
	req.Customer.Email = strings.ToLower(req.Customer.Email)

	items := make([]Item, len(lines))
	for i, l := range lines {
		items[i] = Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Image:     l.Image,
		}
	}

	o := &Order{
		ID:            newOrderID(now),
		Items:         items,
		Customer:      req.Customer,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		TotalAmount:   totals.Total,
		PaymentMethod: PaymentMethodCOD,
		Status:        StatusProcessing,
		CreatedAt:     now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// Stock decrements are clamped at zero and best effort: the order is
	// already the system of record, so a failed decrement must not undo it.
	for _, l := range lines {
		if _, err := s.stock.DecrementStock(ctx, l.ProductID, l.Quantity); err != nil {
			zctx.From(ctx).Warn("Stock decrement failed",
				zap.String("order_id", o.ID),
				zap.String("product_id", l.ProductID),
				zap.Error(err),
			)
		}
	}

	if err := s.events.OrderCreated(ctx, o); err != nil {
		zctx.From(ctx).Warn("Order event publish failed",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
	return o, nil
}

// buildLines resolves each selection against the catalog, snapshots product
// data into cart lines, and merges duplicate selections. Each distinct
// product is fetched once.
func (s *Service) buildLines(ctx context.Context, items []ItemRequest) ([]cart.Line, error) {
	lines := make([]cart.Line, 0, len(items))
	fetched := make(map[string]*catalog.Product, len(items))

	for _, item := range items {
		p, ok := fetched[item.ProductID]
		if !ok {
			var err error
			p, err = s.catalog.GetByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return nil, &ProductNotFoundError{ProductID: item.ProductID}
				}
				return nil, errors.Wrapf(err, "get product %s", item.ProductID)
			}
			fetched[item.ProductID] = p
		}
		lines = append(lines, cart.NewLine(*p, item.Quantity))
	}
	return cart.Group(lines), nil
}

// UpdateStatus applies a requested lifecycle transition. Disallowed
// transitions, terminal states included, return InvalidTransitionError and
// leave the stored status untouched.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if !CanTransition(from, to) {
		return nil, &InvalidTransitionError{OrderID: id, From: from, To: to}
	}

	var deliveredAt *time.Time
	if to == StatusDelivered {
		t := s.now().UTC()
		deliveredAt = &t
	}

	if err := s.orders.TransitionStatus(ctx, id, from, to, deliveredAt); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			// Lost a race with another transition; report against the
			// status that actually won.
			current, getErr := s.orders.GetByID(ctx, id)
			if getErr == nil {
				from = current.Status
			}
			return nil, &InvalidTransitionError{OrderID: id, From: from, To: to}
		}
		return nil, errors.Wrap(err, "transition status")
	}

	o.Status = to
	o.DeliveredAt = deliveredAt

	if err := s.events.OrderStatusChanged(ctx, o, from); err != nil {
		zctx.From(ctx).Warn("Order event publish failed",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
	return o, nil
}

// Cancel is the user-facing cancellation action: permitted from processing
// and shipped only.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	return s.UpdateStatus(ctx, id, StatusCancelled)
}

// GetByID returns a single order.
func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByEmail returns all orders placed with the given customer email,
// newest first.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	return s.orders.ListByEmail(ctx, strings.ToLower(email))
}

// ListAll returns every order, newest first. Administrative view.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.ListAll(ctx)
}

// newOrderID builds a store-unique order identifier. The format is not a
// compatibility contract; only uniqueness is.
func newOrderID(now time.Time) string {
	return fmt.Sprintf("ORD%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
