package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhruvnair/bazaarkart/internal/domain/catalog"
)

const defaultProductImage = "https://picsum.photos/500"

type productRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	OriginalPrice float64 `json:"originalPrice" validate:"omitempty,gte=0,gtefield=Price"`
	Discount      int     `json:"discount" validate:"gte=0,lte=100"`
	InStock       int     `json:"inStock" validate:"gte=0"`
	Category      string  `json:"category" validate:"required"`
	Image         string  `json:"image"`
}

type reviewRequest struct {
	User    string `json:"user" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

type stockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type reviewResponse struct {
	User    string    `json:"user"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

type productResponse struct {
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
	Reviews       []reviewResponse `json:"reviews,omitempty"`
}

func (h *Handler) toProductResponse(p catalog.Product) productResponse {
	resp := productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.InexactFloat64(),
		OriginalPrice: p.OriginalPrice.InexactFloat64(),
		Discount:      p.Discount,
		InStock:       p.InStock,
		Category:      p.Category,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Image:         h.imageURL(p.Image),
	}
	for _, rv := range p.Reviews {
		resp.Reviews = append(resp.Reviews, reviewResponse(rv))
	}
	return resp
}

// imageURL prefixes relative image paths with the configured base URL.
func (h *Handler) imageURL(image string) string {
	if h.imageBaseURL == "" || strings.HasPrefix(image, "http") || strings.HasPrefix(image, "data:") {
		return image
	}
	return h.imageBaseURL + image
}

// listProducts returns the full catalog. Reads go through the fallback
// source, so an unavailable store still yields a non-empty list.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = h.toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// getProduct returns one product by ID.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

// createProduct adds a catalog item. Original price defaults to the price
// and the image to a placeholder, matching the storefront admin form.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}

	p := catalog.Product{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         decimal.NewFromFloat(req.Price),
		OriginalPrice: decimal.NewFromFloat(req.OriginalPrice),
		Discount:      req.Discount,
		InStock:       req.InStock,
		Category:      req.Category,
		Image:         req.Image,
	}
	if p.OriginalPrice.IsZero() {
		p.OriginalPrice = p.Price
	}
	if p.Image == "" {
		p.Image = defaultProductImage
	}

	if err := h.products.Create(r.Context(), &p); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toProductResponse(p))
}

// updateProduct replaces the mutable fields of a product.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}

	u := catalog.Update{
		Name:          req.Name,
		Description:   req.Description,
		Price:         decimal.NewFromFloat(req.Price),
		OriginalPrice: decimal.NewFromFloat(req.OriginalPrice),
		Discount:      req.Discount,
		InStock:       req.InStock,
		Category:      req.Category,
		Image:         req.Image,
	}
	if u.OriginalPrice.IsZero() {
		u.OriginalPrice = u.Price
	}

	p, err := h.products.Replace(r.Context(), r.PathValue("id"), u)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

// deleteProduct removes a product from the catalog.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "product deleted successfully"})
}

// addReview appends a review; rating and reviewCount are recomputed in the
// same atomic update, so the returned product is always consistent.
func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.products.AddReview(r.Context(), r.PathValue("id"), catalog.Review{
		User:    req.User,
		Rating:  req.Rating,
		Comment: req.Comment,
		Date:    time.Now().UTC(),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toProductResponse(*p))
}

// decrementStock reduces available stock, clamped at zero. Requesting more
// than is available is not an error.
func (h *Handler) decrementStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.products.DecrementStock(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}
