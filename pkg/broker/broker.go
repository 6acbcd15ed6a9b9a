// Package broker fans conversation events out to live subscribers. Delivery
// is best effort and at most once; the database stays the durable record.
package broker

import (
	"context"
	"errors"
)

const subscriptionBuffer = 64

var ErrBrokerClosed = errors.New("broker closed")

type (
	Broker interface {
		Publish(ctx context.Context, topic string, payload []byte) error
		Subscribe(ctx context.Context, topic string) (Subscription, error)
		Close() error
	}

	Subscription interface {
		Messages() <-chan []byte
		Close() error
	}
)

// ConversationTopic names the topic carrying the events of one conversation.
func ConversationTopic(conversationID string) string {
	return "chat:" + conversationID
}
