package handler

import (
	"net/http"
	"time"

	"github.com/dhruvnair/bazaarkart/internal/domain/order"
)

type orderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type customerRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,len=10,numeric"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
}

type placeOrderRequest struct {
	Items    []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Customer customerRequest    `json:"customer" validate:"required"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

type customerResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	Items         []orderItemResponse `json:"items"`
	Customer      customerResponse    `json:"customer"`
	Subtotal      float64             `json:"subtotal"`
	Tax           float64             `json:"tax"`
	TotalAmount   float64             `json:"totalAmount"`
	PaymentMethod string              `json:"paymentMethod"`
	Status        string              `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	DeliveredAt   *time.Time          `json:"deliveredAt,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Customer:      customerResponse(o.Customer),
		Subtotal:      o.Subtotal.InexactFloat64(),
		Tax:           o.Tax.InexactFloat64(),
		TotalAmount:   o.TotalAmount.InexactFloat64(),
		PaymentMethod: o.PaymentMethod,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		DeliveredAt:   o.DeliveredAt,
		Items:         make([]orderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return resp
}

// placeOrder creates an order from the validated checkout request.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Items:    items,
		Customer: order.Customer(req.Customer),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// listOrders returns every order. Administrative view.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderListResponse(orders))
}

// getOrder returns one order by ID.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// updateOrderStatus applies a lifecycle transition. Invalid transitions are
// rejected with 409 and leave the order untouched.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "status")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// listUserOrders returns the orders placed with the given customer email.
func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderListResponse(orders))
}

func toOrderListResponse(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	return out
}
