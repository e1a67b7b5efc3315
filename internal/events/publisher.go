package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const orderEventsTopic = "order-events"

// OrderRecordedEvent announces a durably recorded order. Path tells consumers
// whether the order landed on the primary path or in the temporary collection.
type OrderRecordedEvent struct {
	EventID     string    `json:"event_id"`
	PaymentID   string    `json:"payment_id"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	Path        string    `json:"path"`
	Timestamp   time.Time `json:"timestamp"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        orderEventsTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

// PublishOrderRecorded emits the event keyed by payment id. The caller treats
// failures as log-only; a lost event never fails a checkout.
func (p *Publisher) PublishOrderRecorded(ctx context.Context, event OrderRecordedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PaymentID),
		Value: data,
	})
}

func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Println("[EVENTS] [ERROR] closing kafka writer:", err)
	}
}
