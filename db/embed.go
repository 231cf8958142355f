// Package db provides the embedded seed catalog. The same data doubles as
// the read fallback when the product store is unreachable.
package db

import (
	_ "embed"

	"github.com/dhruvnair/bazaarkart/internal/domain/catalog"
)

// SeedProducts is the raw seed catalog JSON.
//
//go:embed seed/products.json
var SeedProducts []byte

// FallbackCatalog parses the embedded catalog into domain products.
func FallbackCatalog() ([]catalog.Product, error) {
	return catalog.ParseFallback(SeedProducts)
}
