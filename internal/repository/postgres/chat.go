package postgres

import (
	"context"
	"database/sql"

	"boleia/internal/domain"
	"boleia/internal/repository"
)

// ChatRepository is a PostgreSQL implementation of repository.ChatRepository.
type ChatRepository struct {
	q Querier
}

// NewChatRepository creates a new PostgreSQL chat repository.
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{q: db}
}

// Append persists a new message.
func (r *ChatRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO ride_messages (id, ride_id, sender_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		msg.ID, msg.RideID, msg.SenderID, msg.Body, msg.SentAt)
	return err
}

// ListByRide retrieves a ride's messages in send order.
func (r *ChatRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, ride_id, sender_id, body, sent_at
		FROM ride_messages WHERE ride_id = $1 ORDER BY sent_at
	`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.RideID, &msg.SenderID, &msg.Body, &msg.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// Ensure ChatRepository implements repository.ChatRepository.
var _ repository.ChatRepository = (*ChatRepository)(nil)
