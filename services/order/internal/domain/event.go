package domain

import "time"

const (
	EventOrderCreated         = "order.created"
	EventOrderStatusChanged   = "order.status_changed"
	EventOrderPaymentVerified = "order.payment_verified"
	EventOrderChargeUpdated   = "order.transportation_updated"
)

// Event describes a successful order mutation. Order is the state after it.
type Event struct {
	Type       string
	From       Status
	Order      Order
	OccurredAt time.Time
}
