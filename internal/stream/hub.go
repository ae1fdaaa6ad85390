package stream

import (
	"context"
	"sync"

	"boleia/internal/domain"
)

// subscriptionBuffer is the per-subscriber channel depth. A subscriber
// that falls this far behind starts losing intermediate events; it can
// recover the current state with a fresh read.
const subscriptionBuffer = 16

// Subscription is one observer's handle on a ride's event stream.
type Subscription struct {
	C chan domain.RideEvent

	hub    *Hub
	rideID string
	once   sync.Once
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s.rideID, s)
	})
}

// Hub fans ride events out to per-ride subscribers. Sends never block:
// a subscriber whose buffer is full is skipped for that event, so a slow
// or disconnected observer cannot stall the writer side.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers an observer for one ride's events.
func (h *Hub) Subscribe(rideID string) *Subscription {
	sub := &Subscription{
		C:      make(chan domain.RideEvent, subscriptionBuffer),
		hub:    h,
		rideID: rideID,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[rideID] == nil {
		h.subs[rideID] = make(map[*Subscription]struct{})
	}
	h.subs[rideID][sub] = struct{}{}

	return sub
}

// PublishRideEvent implements Publisher.
func (h *Hub) PublishRideEvent(_ context.Context, event domain.RideEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[event.RideID] {
		select {
		case sub.C <- event:
		default:
		}
	}
}

func (h *Hub) remove(rideID string, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[rideID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, rideID)
		}
	}
}

// Ensure Hub implements Publisher.
var _ Publisher = (*Hub)(nil)
