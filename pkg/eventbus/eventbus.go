package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is anything that can be published on the bus.
type Event interface {
	Name() string
}

// Listener handles a published event.
type Listener func(ctx context.Context, event Event) error

// Bus is an in-process publish/subscribe bus. Listeners run in their own
// goroutines after the publisher has already committed; a listener error is
// logged and never reaches the publisher. This is the best-effort boundary
// between the transition commit and its side effects.
type Bus struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		logger:    logger,
	}
}

func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish invokes every subscriber of the event asynchronously. Each listener
// gets a bounded context so a stuck handler cannot leak a goroutine forever.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	eventName := event.Name()
	for _, listener := range b.listeners[eventName] {
		go func(l Listener) {
			lctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()

			if err := l(lctx, event); err != nil {
				b.logger.Error("error en el listener de eventos",
					zap.String("event", eventName),
					zap.Error(err),
				)
			}
		}(listener)
	}
}
