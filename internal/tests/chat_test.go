package tests

import (
	"context"
	"errors"
	"testing"

	"boleia/internal/domain"
	"boleia/internal/service"
)

func newChatFixture() (*service.ChatService, *MockRideRepository, *MockChatRepository, *MockPublisher) {
	chatRepo := NewMockChatRepository()
	rideRepo := NewMockRideRepository()
	publisher := NewMockPublisher()
	return service.NewChatService(chatRepo, rideRepo, publisher), rideRepo, chatRepo, publisher
}

func TestChat_PassengerAndDriverCanMessage(t *testing.T) {
	ctx := context.Background()
	chatService, rideRepo, _, _ := newChatFixture()
	rideRepo.AddRide(activeRide("ride-1", domain.RideStatusAccepted))

	if _, err := chatService.Send(ctx, "ride-1", "passenger-1", "where are you?"); err != nil {
		t.Fatalf("passenger message failed: %v", err)
	}
	if _, err := chatService.Send(ctx, "ride-1", "driver-1", "two minutes away"); err != nil {
		t.Fatalf("driver message failed: %v", err)
	}

	messages, err := chatService.List(ctx, "ride-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].SenderID != "passenger-1" || messages[1].SenderID != "driver-1" {
		t.Errorf("messages out of order: %s, %s", messages[0].SenderID, messages[1].SenderID)
	}
}

func TestChat_StrangerCannotMessage(t *testing.T) {
	ctx := context.Background()
	chatService, rideRepo, chatRepo, _ := newChatFixture()
	rideRepo.AddRide(activeRide("ride-1", domain.RideStatusAccepted))

	_, err := chatService.Send(ctx, "ride-1", "someone-else", "hello")
	if !errors.Is(err, service.ErrActorNotOnRide) {
		t.Fatalf("expected ErrActorNotOnRide, got %v", err)
	}
	if msgs, _ := chatRepo.ListByRide(ctx, "ride-1"); len(msgs) != 0 {
		t.Error("rejected message must not be stored")
	}
}

func TestChat_ClosedRide_Rejected(t *testing.T) {
	ctx := context.Background()
	chatService, rideRepo, _, _ := newChatFixture()

	for _, status := range []domain.RideStatus{
		domain.RideStatusCompleted,
		domain.RideStatusCancelled,
		domain.RideStatusNoDriversFound,
	} {
		rideRepo.AddRide(activeRide("ride-"+string(status), status))

		_, err := chatService.Send(ctx, "ride-"+string(status), "passenger-1", "hello")
		if !errors.Is(err, service.ErrRideClosed) {
			t.Errorf("%s: expected ErrRideClosed, got %v", status, err)
		}
	}
}

func TestChat_EmptyBody_Rejected(t *testing.T) {
	ctx := context.Background()
	chatService, rideRepo, _, _ := newChatFixture()
	rideRepo.AddRide(activeRide("ride-1", domain.RideStatusAccepted))

	for _, body := range []string{"", "   ", "\n\t"} {
		_, err := chatService.Send(ctx, "ride-1", "passenger-1", body)
		if !errors.Is(err, service.ErrEmptyMessage) {
			t.Errorf("body %q: expected ErrEmptyMessage, got %v", body, err)
		}
	}
}

func TestChat_MessagePushedToRideObservers(t *testing.T) {
	ctx := context.Background()
	chatService, rideRepo, _, publisher := newChatFixture()
	rideRepo.AddRide(activeRide("ride-1", domain.RideStatusInProgress))

	msg, err := chatService.Send(ctx, "ride-1", "driver-1", "arriving now")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	events := publisher.EventsOfType(domain.RideEventChatMessage)
	if len(events) != 1 {
		t.Fatalf("expected 1 CHAT_MESSAGE event, got %d", len(events))
	}
	if events[0].Message == nil || events[0].Message.ID != msg.ID {
		t.Errorf("event must carry the stored message, got %+v", events[0].Message)
	}
}
