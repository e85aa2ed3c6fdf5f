package notify

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
)

type Notifier interface {
	Notify(ctx context.Context, ev domain.Event) error
}

// Publisher is the subset of pkg/kafka.Producer used here.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

const DefaultTopic = "order_events"

type OrderEventMessage struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	StoreID       string    `json:"store_id"`
	UserID        string    `json:"user_id"`
	From          string    `json:"from,omitempty"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	TotalAmount   string    `json:"total_amount"`
	Reason        string    `json:"rejection_reason,omitempty"`
	Version       int64     `json:"version"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewOrderEventMessage(ev domain.Event) OrderEventMessage {
	o := ev.Order
	return OrderEventMessage{
		Type:          ev.Type,
		OrderID:       o.ID.String(),
		StoreID:       o.Store.ID.String(),
		UserID:        o.Customer.ID.String(),
		From:          string(ev.From),
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Reason:        o.RejectionReason,
		Version:       o.Version,
		OccurredAt:    ev.OccurredAt,
	}
}

// KafkaNotifier publishes order events keyed by order id, so every event of
// one order lands on the same partition in the order Notify is called.
// Messages carry the order version for consumers that need to reorder.
type KafkaNotifier struct {
	Publisher Publisher
	Topic     string
}

func NewKafkaNotifier(p Publisher, topic string) *KafkaNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaNotifier{Publisher: p, Topic: topic}
}

func (n *KafkaNotifier) Notify(ctx context.Context, ev domain.Event) error {
	return n.Publisher.PublishEvent(ctx, n.Topic, ev.Order.ID.String(), NewOrderEventMessage(ev))
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev domain.Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Notify(context.Context, domain.Event) error { return nil }
