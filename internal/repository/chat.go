package repository

import (
	"context"

	"boleia/internal/domain"
)

// ChatRepository defines the persistence operations for ride chat.
type ChatRepository interface {
	// Append persists a new message.
	Append(ctx context.Context, msg *domain.ChatMessage) error

	// ListByRide retrieves a ride's messages in send order.
	ListByRide(ctx context.Context, rideID string) ([]*domain.ChatMessage, error)
}
