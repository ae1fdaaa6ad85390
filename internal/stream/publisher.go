// Package stream propagates ride lifecycle events to observers: the
// in-process hub feeds connected WebSocket clients, and the optional AMQP
// publisher feeds external consumers such as fleet dashboards and the
// notification pipeline. Delivery is best-effort; a fresh read of the
// ride is always the authoritative state.
package stream

import (
	"context"

	"boleia/internal/domain"
)

// Publisher pushes ride events to observers.
type Publisher interface {
	PublishRideEvent(ctx context.Context, event domain.RideEvent)
}

// Fanout is a Publisher that forwards every event to each of its
// publishers in order.
type Fanout []Publisher

// PublishRideEvent implements Publisher.
func (f Fanout) PublishRideEvent(ctx context.Context, event domain.RideEvent) {
	for _, p := range f {
		p.PublishRideEvent(ctx, event)
	}
}
