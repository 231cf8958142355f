// Package cart aggregates product selections into priced line items:
// duplicate selections merge, quantities can be adjusted, and totals carry
// a configurable tax rate.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dhruvnair/bazaarkart/internal/domain/catalog"
)

// ErrNegativeQuantity is returned when a quantity below zero is requested.
var ErrNegativeQuantity = errors.New("quantity must not be negative")

// DefaultTaxRate is the standard 18% rate applied at checkout.
var DefaultTaxRate = decimal.New(18, -2)

// Line is one aggregated cart entry: a product snapshot plus quantity.
type Line struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Image     string
}

// NewLine snapshots a product into a cart line with the given quantity.
func NewLine(p catalog.Product, quantity int) Line {
	return Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
		Image:     p.Image,
	}
}

// Group merges lines that reference the same product into a single line,
// summing quantities. First-seen order is preserved.
func Group(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// SetQuantity sets the quantity of the line holding productID. Zero removes
// the line, negative quantities are rejected, and an unknown product is a
// no-op. The input slice is not modified.
func SetQuantity(lines []Line, productID string, quantity int) ([]Line, error) {
	if quantity < 0 {
		return nil, ErrNegativeQuantity
	}

	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductID != productID {
			out = append(out, l)
			continue
		}
		if quantity == 0 {
			continue
		}
		l.Quantity = quantity
		out = append(out, l)
	}
	return out, nil
}

// TotalItems sums the quantities across all lines.
func TotalItems(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// Totals is the priced summary of a cart.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Pricer computes cart totals under a fixed tax rate.
type Pricer struct {
	taxRate decimal.Decimal
}

// NewPricer returns a Pricer applying the given fractional tax rate.
func NewPricer(taxRate decimal.Decimal) Pricer {
	return Pricer{taxRate: taxRate}
}

// Totals prices the cart: subtotal is the sum of price times quantity, tax
// is the subtotal times the rate rounded half-up to a whole amount, total is
// their sum.
func (p Pricer) Totals(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	// Round is half-away-from-zero, which for a non-negative subtotal is
	// exactly round-half-up.
	tax := subtotal.Mul(p.taxRate).Round(0)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
