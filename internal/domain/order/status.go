package order

import "fmt"

// Status is an order lifecycle state. The lifecycle is
// processing -> shipped -> delivered, with cancellation allowed from
// processing and shipped. Delivered and cancelled are terminal.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// statusAliases maps accepted input spellings to canonical statuses. The
// original storefront used "confirmed" for a freshly placed order.
var statusAliases = map[string]Status{
	"confirmed":  StatusProcessing,
	"processing": StatusProcessing,
	"shipped":    StatusShipped,
	"delivered":  StatusDelivered,
	"cancelled":  StatusCancelled,
}

// ParseStatus resolves a status string, accepting the "confirmed" alias for
// the initial state. Unknown values return an error.
func ParseStatus(s string) (Status, error) {
	if st, ok := statusAliases[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// transitions is the full set of permitted status changes.
var transitions = map[Status]map[Status]bool{
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true, StatusCancelled: true},
}

// CanTransition reports whether moving from -> to is permitted.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// InvalidTransitionError reports a requested status change that the
// lifecycle does not permit. The stored status is left untouched.
type InvalidTransitionError struct {
	OrderID string
	From    Status
	To      Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s: invalid status transition %s -> %s", e.OrderID, e.From, e.To)
}
