package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

var _ Reader = (*Source)(nil)

// Source is a Reader over a primary store with a static in-memory fallback.
// Any primary failure silently serves the fallback catalog, so browsing
// keeps working through a store outage. GetByID also consults the fallback
// when the primary simply does not have the product; ErrNotFound means the
// product exists in neither source.
type Source struct {
	primary  Reader
	fallback []Product
	byID     map[string]*Product
}

// NewSource builds a Source over the primary reader and fallback catalog.
func NewSource(primary Reader, fallback []Product) *Source {
	byID := make(map[string]*Product, len(fallback))
	for i := range fallback {
		byID[fallback[i].ID] = &fallback[i]
	}
	return &Source{primary: primary, fallback: fallback, byID: byID}
}

// List returns the primary catalog, or a copy of the fallback catalog when
// the primary fails.
func (s *Source) List(ctx context.Context) ([]Product, error) {
	products, err := s.primary.List(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Catalog store unavailable, serving fallback",
			zap.Error(err),
		)
		out := make([]Product, len(s.fallback))
		copy(out, s.fallback)
		return out, nil
	}
	return products, nil
}

// GetByID returns the product from the primary store, falling back to the
// bundled catalog on any primary error.
func (s *Source) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := s.primary.GetByID(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		zctx.From(ctx).Warn("Catalog store unavailable, serving fallback",
			zap.String("product_id", id),
			zap.Error(err),
		)
	}

	fb, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *fb
	return &cp, nil
}
