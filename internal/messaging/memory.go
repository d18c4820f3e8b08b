package messaging

import (
	"context"
	"errors"
	"sync"
)

const memoryHistory = 1024

// Handler consumes messages delivered by the in-process bus.
type Handler func(ctx context.Context, msg Message) error

// MemoryBus delivers messages synchronously to in-process subscribers and
// keeps the most recent ones for inspection.
type MemoryBus struct {
	mu        sync.RWMutex
	listeners map[string][]Handler
	history   []Message
}

// NewMemoryBus creates a bus without subscribers.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{listeners: make(map[string][]Handler)}
}

// Publish invokes every handler subscribed to topic. Handler errors are
// joined; all handlers run regardless.
func (b *MemoryBus) Publish(ctx context.Context, topic string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	b.history = append(b.history, msg)
	if len(b.history) > memoryHistory {
		b.history = b.history[len(b.history)-memoryHistory:]
	}
	handlers := append([]Handler{}, b.listeners[topic]...)
	b.mu.Unlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for topic.
func (b *MemoryBus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[topic] = append(b.listeners[topic], handler)
}

// Messages returns the retained messages, oldest first.
func (b *MemoryBus) Messages() []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Message{}, b.history...)
}

func (b *MemoryBus) Name() string { return "memory" }
func (b *MemoryBus) Close() error { return nil }
