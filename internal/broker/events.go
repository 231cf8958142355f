package broker

import "time"

// Event types published to the order events topic.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the wire format for order lifecycle notifications. Keyed by
// order ID so all events for one order land on the same partition, in order.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"orderId"`
	CustomerEmail string    `json:"customerEmail"`
	Status        string    `json:"status"`
	PreviousState string    `json:"previousStatus,omitempty"`
	TotalAmount   float64   `json:"totalAmount"`
	OccurredAt    time.Time `json:"occurredAt"`
}
