package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const itemStatusDelivered = "delivered"

type (
	MessageReader interface {
		ReadMessage(ctx context.Context) (kafka.Message, error)
	}

	SalesRecorder interface {
		IncrementTotalSales(ctx context.Context, farmerID string, quantity int) error
	}
)

// SalesListener adds delivered quantities to the farmer's total sales.
type SalesListener struct {
	reader   MessageReader
	recorder SalesRecorder
	logger   *zap.Logger
}

func NewSalesListener(reader MessageReader, recorder SalesRecorder, logger *zap.Logger) *SalesListener {
	return &SalesListener{
		reader:   reader,
		recorder: recorder,
		logger:   logger,
	}
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

func (l *SalesListener) Start(ctx context.Context) {
	l.logger.Info("starting sales listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping sales listener")
			return
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *SalesListener) processMessage(ctx context.Context, value []byte) {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventItemStatusChanged {
		return
	}

	for _, item := range event.Items {
		if item.Status != itemStatusDelivered {
			continue
		}
		if err := l.recorder.IncrementTotalSales(ctx, item.FarmerID, item.Quantity); err != nil {
			l.logger.Error("failed to record farmer sales",
				zap.String("order_number", event.OrderNumber),
				zap.String("farmer_id", item.FarmerID),
				zap.Error(err),
			)
		}
	}
}
