package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventOrderPlaced       = "OrderPlaced"
	EventItemStatusChanged = "ItemStatusChanged"
)

type (
	Event struct {
		EventID     string        `json:"event_id"`
		EventType   string        `json:"event_type"`
		OrderID     string        `json:"order_id"`
		OrderNumber string        `json:"order_number"`
		BuyerID     string        `json:"buyer_id"`
		OrderStatus string        `json:"order_status"`
		Items       []ItemPayload `json:"items"`
		Timestamp   time.Time     `json:"timestamp"`
	}

	ItemPayload struct {
		ItemID    string `json:"item_id"`
		ProductID string `json:"product_id"`
		FarmerID  string `json:"farmer_id"`
		Quantity  int    `json:"quantity"`
		Status    string `json:"status"`
	}
)

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType string) Event {
	return Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Publish keys the message by order number so that events of one order stay
// on one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: value,
	}); err != nil {
		return err
	}

	p.logger.Debug("event published",
		zap.String("event_type", event.EventType),
		zap.String("order_number", event.OrderNumber),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
