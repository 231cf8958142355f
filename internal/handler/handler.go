// Package handler exposes the storefront REST API over net/http. Handlers
// decode explicit request schemas, validate at the boundary, delegate to the
// domain, and map domain errors to the HTTP error taxonomy.
package handler

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dhruvnair/bazaarkart/internal/domain/catalog"
	"github.com/dhruvnair/bazaarkart/internal/domain/order"
	"github.com/dhruvnair/bazaarkart/internal/domain/session"
)

const maxBodyBytes = 1 << 20

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. Absolute URLs are passed through untouched.
	ImageBaseURL string
}

// Handler carries the API dependencies. Catalog reads go through the
// fallback-backed reader; admin mutations hit the repository directly so
// their failures surface normally.
type Handler struct {
	catalog      catalog.Reader
	products     catalog.Repository
	orders       *order.Service
	sessions     session.Store
	validate     *validator.Validate
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(cfg Config, cat catalog.Reader, products catalog.Repository, orders *order.Service, sessions session.Store) *Handler {
	v := validator.New()
	// Report offending fields by their JSON names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		catalog:      cat,
		products:     products,
		orders:       orders,
		sessions:     sessions,
		validate:     v,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes registers every API route on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.deleteProduct)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.addReview)
	mux.HandleFunc("PUT /api/products/{id}/stock", h.decrementStock)

	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("PUT /api/orders/{id}/status", h.updateOrderStatus)
	mux.HandleFunc("GET /api/orders/user/{email}", h.listUserOrders)

	mux.HandleFunc("GET /api/cart/{sessionID}", h.getCart)
	mux.HandleFunc("PUT /api/cart/{sessionID}", h.putCart)
	mux.HandleFunc("DELETE /api/cart/{sessionID}", h.clearCart)

	return mux
}

// errorResponse is the uniform error envelope. Fields carries the offending
// field names for validation failures.
type errorResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, fields ...string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message, Fields: fields})
}

// decode reads, parses, and validates a JSON request body into dst.
// The returned bool reports success; on failure the response is written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fe.Field()
			}
			writeError(w, http.StatusBadRequest, "validation failed", fields...)
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

// respondError maps domain errors onto the HTTP taxonomy. Everything
// unclassified is a generic 500; the cause is logged, not leaked.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		var (
			iqErr *order.InvalidQuantityError
			pnErr *order.ProductNotFoundError
			itErr *order.InvalidTransitionError
		)
		switch {
		case errors.As(err, &iqErr):
			writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
		case errors.As(err, &pnErr):
			writeError(w, http.StatusUnprocessableEntity, pnErr.Error())
		case errors.As(err, &itErr):
			writeError(w, http.StatusConflict, itErr.Error())
		default:
			zctx.From(r.Context()).Error("Request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "server error")
		}
	}
}
