package broker

import (
	"context"
	"sync"
)

// MemoryBroker fans out inside one process. A subscriber whose buffer is
// full misses the event.
type MemoryBroker struct {
	mu     sync.RWMutex
	topics map[string]map[*memorySubscription]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{topics: map[string]map[*memorySubscription]struct{}{}}
}

func (b *MemoryBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}

	for sub := range b.topics[topic] {
		select {
		case sub.ch <- payload:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}

	sub := &memorySubscription{
		broker: b,
		topic:  topic,
		ch:     make(chan []byte, subscriptionBuffer),
	}
	if b.topics[topic] == nil {
		b.topics[topic] = map[*memorySubscription]struct{}{}
	}
	b.topics[topic][sub] = struct{}{}
	return sub, nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.topics {
		for sub := range subs {
			sub.closeLocked()
		}
	}
	b.topics = map[string]map[*memorySubscription]struct{}{}
	return nil
}

type memorySubscription struct {
	broker *MemoryBroker
	topic  string
	ch     chan []byte
	once   sync.Once
}

func (s *memorySubscription) Messages() <-chan []byte {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	s.closeLocked()
	return nil
}

// closeLocked must be called with the broker lock held, so no publisher is
// sending on the channel while it closes.
func (s *memorySubscription) closeLocked() {
	s.once.Do(func() {
		if subs := s.broker.topics[s.topic]; subs != nil {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.broker.topics, s.topic)
			}
		}
		close(s.ch)
	})
}
