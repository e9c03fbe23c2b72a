package client

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// localBus fans messages out to subscribers inside this process. It is used
// when no RabbitMQ URL is configured, which is enough for a single replica.
type localBus struct {
	subscribers map[string]chan []byte
	mu          sync.RWMutex
}

func NewLocalBus() MessageBus {
	return &localBus{
		subscribers: make(map[string]chan []byte),
	}
}

func (b *localBus) Publish(ctx context.Context, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sink := range b.subscribers {
		select {
		case sink <- message:
		default:
			logrus.Warnf("Subscriber %s is not keeping up; dropping message", id)
		}
	}
	return nil
}

func (b *localBus) Subscribe(id string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sink, exists := b.subscribers[id]; exists {
		return sink, nil
	}
	sink := make(chan []byte, subscriberQueue)
	b.subscribers[id] = sink
	return sink, nil
}

func (b *localBus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sink, exists := b.subscribers[id]; exists {
		delete(b.subscribers, id)
		close(sink)
	}
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sink := range b.subscribers {
		delete(b.subscribers, id)
		close(sink)
	}
	return nil
}
