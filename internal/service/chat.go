package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"boleia/internal/domain"
	"boleia/internal/repository"
	"boleia/internal/stream"
)

// ChatService handles in-ride messaging between the passenger and the
// assigned driver.
type ChatService struct {
	chatRepo  repository.ChatRepository
	rideRepo  repository.RideRepository
	publisher stream.Publisher
}

// NewChatService creates a new ChatService.
func NewChatService(chatRepo repository.ChatRepository, rideRepo repository.RideRepository, publisher stream.Publisher) *ChatService {
	return &ChatService{chatRepo: chatRepo, rideRepo: rideRepo, publisher: publisher}
}

// Send appends a message to the ride's chat and pushes it to the ride's
// observers. Only the passenger and the assigned driver may write, and
// only while the ride is open.
func (s *ChatService) Send(ctx context.Context, rideID, senderID, body string) (*domain.ChatMessage, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status.IsTerminal() {
		return nil, ErrRideClosed
	}
	if senderID == "" || (senderID != ride.PassengerID && senderID != ride.DriverID) {
		return nil, ErrActorNotOnRide
	}

	msg := &domain.ChatMessage{
		ID:       uuid.New().String(),
		RideID:   rideID,
		SenderID: senderID,
		Body:     body,
		SentAt:   time.Now(),
	}
	if err := s.chatRepo.Append(ctx, msg); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishRideEvent(ctx, domain.RideEvent{
			Type:        domain.RideEventChatMessage,
			RideID:      rideID,
			PassengerID: ride.PassengerID,
			DriverID:    ride.DriverID,
			Status:      ride.Status,
			Message:     msg,
			OccurredAt:  msg.SentAt,
		})
	}

	return msg, nil
}

// List retrieves a ride's messages in send order.
func (s *ChatService) List(ctx context.Context, rideID string) ([]*domain.ChatMessage, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if _, err := s.rideRepo.GetByID(ctx, rideID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListByRide(ctx, rideID)
}
