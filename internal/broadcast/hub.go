// Package broadcast fans state deltas out to UI observers.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// DefaultBufferSize is the per-subscriber queue length.
const DefaultBufferSize = 50

// Subscription is one observer's view of the hub. C is closed on
// Unsubscribe or when the hub closes.
type Subscription struct {
	ID string
	C  <-chan domain.Changes
}

// Hub implements ports.Reporter. Publish never blocks: an observer whose
// queue is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]chan domain.Changes
	buffer  int
	closed  bool
	dropped atomic.Uint64
}

// NewHub creates a hub with the given per-subscriber buffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Hub{
		subs:   make(map[string]chan domain.Changes),
		buffer: buffer,
	}
}

// Subscribe registers a new observer.
func (h *Hub) Subscribe() Subscription {
	ch := make(chan domain.Changes, h.buffer)
	id := uuid.NewString()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
	} else {
		h.subs[id] = ch
	}

	log.Debug().Str("subscriber", id).Msg("observer subscribed")
	return Subscription{ID: id, C: ch}
}

// Unsubscribe removes an observer and closes its channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(ch)
	log.Debug().Str("subscriber", id).Msg("observer unsubscribed")
}

// Publish delivers changes to every observer with room in its queue.
func (h *Hub) Publish(changes domain.Changes) {
	if changes.Empty() {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- changes:
		default:
			h.dropped.Add(1)
			log.Debug().Str("subscriber", id).Msg("observer queue full, dropping changes")
		}
	}
}

// Len returns the number of observers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped on full queues.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close unsubscribes everyone. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
