package events_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"farmket/pkg/events"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	messages []kafka.Message
	cancel   context.CancelFunc
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	sales map[string]int
}

func (r *fakeRecorder) IncrementTotalSales(_ context.Context, farmerID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[farmerID] += quantity
	return nil
}

func message(t *testing.T, event events.Event) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(event.OrderNumber), Value: value}
}

func TestSalesListenerCountsDeliveredItems(t *testing.T) {
	t.Parallel()

	placed := events.NewEvent(events.EventOrderPlaced)
	placed.OrderNumber = "ORD-AAAA1111"
	placed.Items = []events.ItemPayload{{FarmerID: "farmer-1", Quantity: 9, Status: "pending"}}

	delivered := events.NewEvent(events.EventItemStatusChanged)
	delivered.OrderNumber = "ORD-AAAA1111"
	delivered.Items = []events.ItemPayload{{FarmerID: "farmer-1", Quantity: 3, Status: "delivered"}}

	shipped := events.NewEvent(events.EventItemStatusChanged)
	shipped.OrderNumber = "ORD-BBBB2222"
	shipped.Items = []events.ItemPayload{{FarmerID: "farmer-2", Quantity: 5, Status: "shipped"}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		messages: []kafka.Message{
			message(t, placed),
			{Value: []byte("not json")},
			message(t, delivered),
			message(t, shipped),
		},
		cancel: cancel,
	}
	recorder := &fakeRecorder{sales: map[string]int{}}

	events.NewSalesListener(reader, recorder, zap.NewNop()).Start(ctx)

	assert.Equal(t, map[string]int{"farmer-1": 3}, recorder.sales)
}

func TestNopPublisher(t *testing.T) {
	t.Parallel()

	var p events.Publisher = events.NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), events.NewEvent(events.EventOrderPlaced)))
	assert.NoError(t, p.Close())
}
