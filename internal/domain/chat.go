package domain

import "time"

// ChatMessage is a message exchanged between the passenger and the
// assigned driver while a ride is active. Messages are append-only and
// scoped to a single ride.
type ChatMessage struct {
	ID       string
	RideID   string
	SenderID string
	Body     string
	SentAt   time.Time
}
