package catalog

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

type fallbackReview struct {
	User    string    `json:"user"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

type fallbackProduct struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         float64          `json:"price"`
	OriginalPrice float64          `json:"originalPrice"`
	Discount      int              `json:"discount"`
	InStock       int              `json:"inStock"`
	Category      string           `json:"category"`
	Rating        float64          `json:"rating"`
	ReviewCount   int              `json:"reviewCount"`
	Image         string           `json:"image"`
	Reviews       []fallbackReview `json:"reviews"`
}

// ParseFallback decodes the bundled catalog JSON. Products without an
// original price inherit the current price.
func ParseFallback(data []byte) ([]Product, error) {
	var raw []fallbackProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding fallback catalog")
	}

	products := make([]Product, len(raw))
	for i, fp := range raw {
		p := Product{
			ID:            fp.ID,
			Name:          fp.Name,
			Description:   fp.Description,
			Price:         decimal.NewFromFloat(fp.Price),
			OriginalPrice: decimal.NewFromFloat(fp.OriginalPrice),
			Discount:      fp.Discount,
			InStock:       fp.InStock,
			Category:      fp.Category,
			Rating:        fp.Rating,
			ReviewCount:   fp.ReviewCount,
			Image:         fp.Image,
		}
		if p.OriginalPrice.IsZero() {
			p.OriginalPrice = p.Price
		}
		for _, rv := range fp.Reviews {
			p.Reviews = append(p.Reviews, Review(rv))
		}
		products[i] = p
	}
	return products, nil
}
