// Package catalog defines the product domain: the product model, its
// persistence contract, and a read path that falls back to a bundled
// catalog when the primary store is unreachable.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item. Rating and ReviewCount are derived from Reviews
// and recomputed atomically whenever a review is added.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Discount      int
	InStock       int
	Category      string
	Rating        float64
	ReviewCount   int
	Image         string
	Reviews       []Review
}

// Review is a single customer review embedded in a product.
type Review struct {
	User    string
	Rating  int
	Comment string
	Date    time.Time
}

// Update holds the mutable product fields for a full replace. Reviews and
// the derived rating fields are never written through an Update.
type Update struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Discount      int
	InStock       int
	Category      string
	Image         string
}

// Reader is the catalog read path used by the storefront.
type Reader interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}

// Repository is the full persistence contract for products. AddReview and
// DecrementStock are atomic read-modify-write operations: AddReview
// recomputes rating and reviewCount together with the append, and
// DecrementStock clamps the counter at zero.
type Repository interface {
	Reader
	Create(ctx context.Context, p *Product) error
	Replace(ctx context.Context, id string, u Update) (*Product, error)
	Delete(ctx context.Context, id string) error
	AddReview(ctx context.Context, id string, review Review) (*Product, error)
	DecrementStock(ctx context.Context, id string, quantity int) (*Product, error)
}
