package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhruvnair/bazaarkart/internal/domain/catalog"
)

func line(id string, price int64, qty int) Line {
	return Line{ProductID: id, Name: id, Price: decimal.NewFromInt(price), Quantity: qty}
}

func TestGroup_MergesDuplicates(t *testing.T) {
	lines := Group([]Line{
		line("p1", 100, 1),
		line("p2", 50, 1),
		line("p1", 100, 2),
	})

	require.Len(t, lines, 2)
	assert.Equal(t, "p1", lines[0].ProductID, "first-seen order preserved")
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestGroup_QuantityInvariants(t *testing.T) {
	in := []Line{
		line("p1", 100, 2),
		line("p2", 50, 1),
		line("p1", 100, 3),
		line("p3", 10, 4),
	}
	out := Group(in)

	assert.Equal(t, TotalItems(in), TotalItems(out), "grouping must not change total quantity")

	seen := map[string]bool{}
	for _, l := range out {
		require.False(t, seen[l.ProductID], "duplicate line for %s", l.ProductID)
		seen[l.ProductID] = true
	}
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	lines := []Line{line("p1", 100, 2), line("p2", 50, 1)}

	out, err := SetQuantity(lines, "p1", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p2", out[0].ProductID)

	// Re-adding after removal starts fresh at the requested quantity.
	out = Group(append(out, line("p1", 100, 1)))
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[1].Quantity)
}

func TestSetQuantity_Adjusts(t *testing.T) {
	lines := []Line{line("p1", 100, 2)}

	out, err := SetQuantity(lines, "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, out[0].Quantity)

	out, err = SetQuantity(out, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, out[0].Quantity)
}

func TestSetQuantity_NegativeRejected(t *testing.T) {
	_, err := SetQuantity([]Line{line("p1", 100, 2)}, "p1", -1)
	assert.ErrorIs(t, err, ErrNegativeQuantity)
}

func TestSetQuantity_UnknownProductNoop(t *testing.T) {
	lines := []Line{line("p1", 100, 2)}

	out, err := SetQuantity(lines, "nope", 3)
	require.NoError(t, err)
	assert.Equal(t, lines, out)
}

func TestNewLine_Snapshots(t *testing.T) {
	p := catalog.Product{
		ID:    "p1",
		Name:  "Widget",
		Price: decimal.NewFromInt(100),
		Image: "widget.jpg",
	}

	l := NewLine(p, 2)
	assert.Equal(t, "p1", l.ProductID)
	assert.Equal(t, "Widget", l.Name)
	assert.Equal(t, 2, l.Quantity)
	assert.Equal(t, "widget.jpg", l.Image)
}

func TestTotals(t *testing.T) {
	pricer := NewPricer(DefaultTaxRate)

	totals := pricer.Totals([]Line{
		line("p1", 100, 2),
		line("p2", 50, 1),
	})

	assert.True(t, decimal.NewFromInt(250).Equal(totals.Subtotal), "subtotal = %s", totals.Subtotal)
	assert.True(t, decimal.NewFromInt(45).Equal(totals.Tax), "tax = %s", totals.Tax)
	assert.True(t, decimal.NewFromInt(295).Equal(totals.Total), "total = %s", totals.Total)
}

func TestTotals_RoundsHalfUp(t *testing.T) {
	pricer := NewPricer(DefaultTaxRate)

	// 25 * 0.18 = 4.5 rounds up to 5.
	totals := pricer.Totals([]Line{line("p1", 25, 1)})
	assert.True(t, decimal.NewFromInt(5).Equal(totals.Tax), "tax = %s", totals.Tax)
	assert.True(t, decimal.NewFromInt(30).Equal(totals.Total))
}

func TestTotals_Empty(t *testing.T) {
	totals := NewPricer(DefaultTaxRate).Totals(nil)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestTotals_CustomRate(t *testing.T) {
	pricer := NewPricer(decimal.New(5, -2))

	totals := pricer.Totals([]Line{line("p1", 100, 2)})
	assert.True(t, decimal.NewFromInt(10).Equal(totals.Tax), "tax = %s", totals.Tax)
	assert.True(t, decimal.NewFromInt(210).Equal(totals.Total))
}
