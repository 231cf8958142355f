package catalog

import (
	"context"
	"testing"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// --- Mock implementations ---

type stubReader struct {
	products []Product
	listErr  error
	getErr   error
}

func (s *stubReader) List(_ context.Context) ([]Product, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.products, nil
}

func (s *stubReader) GetByID(_ context.Context, id string) (*Product, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, ErrNotFound
}

func product(id, name string, price int64) Product {
	return Product{ID: id, Name: name, Price: decimal.NewFromInt(price)}
}

func TestSourceList_Primary(t *testing.T) {
	primary := &stubReader{products: []Product{product("p1", "Widget", 100)}}
	src := NewSource(primary, []Product{product("fb1", "Fallback", 1)})

	out, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].ID)
}

func TestSourceList_FallbackOnError(t *testing.T) {
	primary := &stubReader{listErr: assert.AnError}
	src := NewSource(primary, []Product{product("fb1", "Fallback", 1)})

	out, err := src.List(context.Background())
	require.NoError(t, err, "primary failure must not surface")
	require.Len(t, out, 1)
	assert.Equal(t, "fb1", out[0].ID)
}

func TestSourceList_FallbackIsCopied(t *testing.T) {
	primary := &stubReader{listErr: assert.AnError}
	src := NewSource(primary, []Product{product("fb1", "Fallback", 1)})

	out, err := src.List(context.Background())
	require.NoError(t, err)
	out[0].Name = "mutated"

	again, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Fallback", again[0].Name)
}

func TestSourceGetByID_Primary(t *testing.T) {
	primary := &stubReader{products: []Product{product("p1", "Widget", 100)}}
	src := NewSource(primary, nil)

	p, err := src.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
}

func TestSourceGetByID_Fallback(t *testing.T) {
	primary := &stubReader{getErr: assert.AnError}
	src := NewSource(primary, []Product{product("fb1", "Fallback", 1)})

	p, err := src.GetByID(context.Background(), "fb1")
	require.NoError(t, err)
	assert.Equal(t, "Fallback", p.Name)
}

func TestSourceGetByID_LogsStoreFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	primary := &stubReader{getErr: assert.AnError}
	src := NewSource(primary, []Product{product("fb1", "Fallback", 1)})

	_, err := src.GetByID(ctx, "fb1")
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len(), "store failure must be logged")

	// A plain miss is not an outage and stays quiet.
	primary.getErr = ErrNotFound
	_, err = src.GetByID(ctx, "fb1")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
}

func TestSourceGetByID_MissingEverywhere(t *testing.T) {
	primary := &stubReader{}
	src := NewSource(primary, []Product{product("fb1", "Fallback", 1)})

	_, err := src.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseFallback(t *testing.T) {
	data := []byte(`[
		{
			"id": "el_001",
			"name": "Wireless Earbuds",
			"description": "Bluetooth 5.3 earbuds",
			"price": 1999,
			"originalPrice": 2999,
			"discount": 33,
			"inStock": 25,
			"category": "electronics",
			"rating": 4.5,
			"reviewCount": 2,
			"image": "earbuds.jpg",
			"reviews": [
				{"user": "ravi", "rating": 4, "comment": "good", "date": "2025-01-10T00:00:00Z"},
				{"user": "meera", "rating": 5, "comment": "great", "date": "2025-02-01T00:00:00Z"}
			]
		},
		{
			"id": "fa_001",
			"name": "Cotton Kurta",
			"price": 799,
			"category": "fashion"
		}
	]`)

	products, err := ParseFallback(data)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "el_001", products[0].ID)
	assert.True(t, decimal.NewFromInt(2999).Equal(products[0].OriginalPrice))
	assert.Len(t, products[0].Reviews, 2)
	assert.Equal(t, 4.5, products[0].Rating)

	// Missing originalPrice inherits the price.
	assert.True(t, decimal.NewFromInt(799).Equal(products[1].OriginalPrice))
}

func TestParseFallback_Malformed(t *testing.T) {
	_, err := ParseFallback([]byte(`{not json`))
	require.Error(t, err)
}
