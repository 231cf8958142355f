// Package broker publishes order lifecycle events to Kafka. Eventing is
// optional: with no brokers configured the application wires the Nop
// publisher and the order flow is unaffected.
package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"

	"github.com/dhruvnair/bazaarkart/internal/domain/order"
)

var _ order.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher emits order events to a single Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// OrderCreated publishes an order.created event.
func (p *KafkaPublisher) OrderCreated(ctx context.Context, o *order.Order) error {
	return p.publish(ctx, OrderEvent{
		Type:          EventOrderCreated,
		OrderID:       o.ID,
		CustomerEmail: o.Customer.Email,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount.InexactFloat64(),
		OccurredAt:    time.Now().UTC(),
	})
}

// OrderStatusChanged publishes an order.status_changed event.
func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) error {
	return p.publish(ctx, OrderEvent{
		Type:          EventOrderStatusChanged,
		OrderID:       o.ID,
		CustomerEmail: o.Customer.Email,
		Status:        string(o.Status),
		PreviousState: string(from),
		TotalAmount:   o.TotalAmount.InexactFloat64(),
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, ev OrderEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: value,
	})
	if err != nil {
		return errors.Wrapf(err, "publish %s", ev.Type)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop is an order.EventPublisher that drops all events.
type Nop struct{}

func (Nop) OrderCreated(context.Context, *order.Order) error                    { return nil }
func (Nop) OrderStatusChanged(context.Context, *order.Order, order.Status) error { return nil }
