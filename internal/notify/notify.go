// Package notify provides an explicit subscribe/unsubscribe contract for
// order change notifications, in place of ambient broadcast events:
// components depend on a handle they hold, not on a global channel name.
package notify

import (
	"sync"

	"github.com/modamarket/storefront/internal/domain"
)

// Hub fans out order change notifications to subscribers. Callbacks run
// synchronously on the publishing goroutine and must not block.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(*domain.Order)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(*domain.Order))}
}

// Subscribe registers a callback for order changes and returns an
// unsubscribe handle. Unsubscribing twice is harmless.
func (h *Hub) Subscribe(fn func(*domain.Order)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Publish notifies all current subscribers of an order change
func (h *Hub) Publish(order *domain.Order) {
	h.mu.Lock()
	fns := make([]func(*domain.Order), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(order)
	}
}
