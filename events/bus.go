package events

import (
	"context"
	"log"
	"sync"
	"time"
)

type Handler func(ctx context.Context, ev Event) error

// Publisher is what use cases depend on.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Bus fans events out to subscribers on the publishing goroutine.
// A failing subscriber is logged and never reported to the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(key string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[key] = append(b.handlers[key], h)
}

func (b *Bus) Publish(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	// copy under lock so handlers may publish in turn
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[ev.Key])+len(b.handlers[All]))
	hs = append(hs, b.handlers[ev.Key]...)
	hs = append(hs, b.handlers[All]...)
	b.mu.RUnlock()

	for _, h := range hs {
		if err := h(ctx, ev); err != nil {
			log.Printf("[events] handler failed key=%s user=%s err=%v", ev.Key, ev.UserID, err)
		}
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
