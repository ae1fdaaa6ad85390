package domain

import "time"

// RideEventType classifies a change pushed to ride observers.
type RideEventType string

const (
	RideEventStatusChanged  RideEventType = "STATUS_CHANGED"
	RideEventDriverAssigned RideEventType = "DRIVER_ASSIGNED"
	RideEventDriverPosition RideEventType = "DRIVER_POSITION"
	RideEventChatMessage    RideEventType = "CHAT_MESSAGE"
	RideEventSettled        RideEventType = "SETTLED"
)

// DriverPosition is a driver's last reported position.
type DriverPosition struct {
	DriverID  string    `json:"driver_id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Geohash   string    `json:"geohash"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RideEvent is the unit pushed to the ride's passenger, assigned driver
// and (via the broker) the driver's fleet manager. Delivery is
// best-effort; the latest full state is always obtainable by a fresh read.
type RideEvent struct {
	Type           RideEventType   `json:"type"`
	RideID         string          `json:"ride_id"`
	PassengerID    string          `json:"passenger_id"`
	DriverID       string          `json:"driver_id,omitempty"`
	FleetManagerID string          `json:"fleet_manager_id,omitempty"`
	Status         RideStatus      `json:"status,omitempty"`
	Position       *DriverPosition `json:"position,omitempty"`
	Message        *ChatMessage    `json:"message,omitempty"`
	Fare           float64         `json:"fare,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
