package stream

import (
	"context"
	"testing"
	"time"

	"boleia/internal/domain"
)

func TestHub_FansOutToAllRideSubscribers(t *testing.T) {
	hub := NewHub()
	subA := hub.Subscribe("ride-1")
	defer subA.Close()
	subB := hub.Subscribe("ride-1")
	defer subB.Close()

	event := domain.RideEvent{Type: domain.RideEventStatusChanged, RideID: "ride-1", Status: domain.RideStatusAtPickup}
	hub.PublishRideEvent(context.Background(), event)

	for _, sub := range []*Subscription{subA, subB} {
		select {
		case got := <-sub.C:
			if got.Status != domain.RideStatusAtPickup {
				t.Errorf("expected AT_PICKUP, got %s", got.Status)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestHub_EventsScopedToRide(t *testing.T) {
	hub := NewHub()
	other := hub.Subscribe("ride-2")
	defer other.Close()

	hub.PublishRideEvent(context.Background(), domain.RideEvent{Type: domain.RideEventStatusChanged, RideID: "ride-1"})

	select {
	case <-other.C:
		t.Fatal("subscriber received event for another ride")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe("ride-1")
	defer slow.Close()

	// Publish far past the buffer without ever draining. Must not hang.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriptionBuffer*4; i++ {
			hub.PublishRideEvent(context.Background(), domain.RideEvent{Type: domain.RideEventDriverPosition, RideID: "ride-1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if got := len(slow.C); got != subscriptionBuffer {
		t.Errorf("expected full buffer of %d, got %d", subscriptionBuffer, got)
	}
}

func TestHub_CloseDetachesSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("ride-1")
	sub.Close()
	sub.Close() // idempotent

	hub.PublishRideEvent(context.Background(), domain.RideEvent{Type: domain.RideEventStatusChanged, RideID: "ride-1"})

	if got := len(sub.C); got != 0 {
		t.Errorf("closed subscription must not receive events, got %d", got)
	}
}

func TestFanout_ForwardsToAllPublishers(t *testing.T) {
	hub1 := NewHub()
	hub2 := NewHub()
	sub1 := hub1.Subscribe("ride-1")
	defer sub1.Close()
	sub2 := hub2.Subscribe("ride-1")
	defer sub2.Close()

	fanout := Fanout{hub1, hub2}
	fanout.PublishRideEvent(context.Background(), domain.RideEvent{Type: domain.RideEventSettled, RideID: "ride-1"})

	if len(sub1.C) != 1 || len(sub2.C) != 1 {
		t.Errorf("expected both hubs to receive the event, got %d and %d", len(sub1.C), len(sub2.C))
	}
}
