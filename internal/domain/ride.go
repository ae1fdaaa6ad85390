package domain

import (
	"errors"
	"time"
)

// ServiceType represents the kind of service a ride request asks for.
type ServiceType string

const (
	ServiceTypeTaxi     ServiceType = "TAXI"
	ServiceTypeMototaxi ServiceType = "MOTOTAXI"
	ServiceTypeDelivery ServiceType = "DELIVERY"
)

// RideStatus represents the current state of a ride request.
type RideStatus string

const (
	RideStatusPending        RideStatus = "PENDING"
	RideStatusSearching      RideStatus = "SEARCHING"
	RideStatusAccepted       RideStatus = "ACCEPTED"
	RideStatusAtPickup       RideStatus = "AT_PICKUP"
	RideStatusInProgress     RideStatus = "IN_PROGRESS"
	RideStatusCompleted      RideStatus = "COMPLETED"
	RideStatusCancelled      RideStatus = "CANCELLED"
	RideStatusNoDriversFound RideStatus = "NO_DRIVERS_FOUND"
)

// Signal is a driver- or passenger-initiated lifecycle action.
type Signal string

const (
	SignalArrived Signal = "ARRIVED"
	SignalStart   Signal = "START"
	SignalFinish  Signal = "FINISH"
	SignalCancel  Signal = "CANCEL"
)

// ErrIllegalTransition is returned when a signal is not valid from the
// ride's current state, including any signal on a terminal ride.
var ErrIllegalTransition = errors.New("illegal ride state transition")

// Location is a geographic point with its human-readable address.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

// RideRequest represents a ride or delivery request in the system.
// DriverID and VehicleID are set together, exactly once, when dispatch
// assigns the request.
type RideRequest struct {
	ID           string
	PassengerID  string
	Origin       Location
	Destination  *Location // nil for open-ended delivery services
	ServiceType  ServiceType
	Status       RideStatus
	DriverID     string
	VehicleID    string
	FinalFare    float64
	CreatedAt    time.Time
	CancelledAt  time.Time
	CancelReason string
}

// IsTerminal reports whether a ride in this state accepts no further
// transitions.
func (s RideStatus) IsTerminal() bool {
	switch s {
	case RideStatusCompleted, RideStatusCancelled, RideStatusNoDriversFound:
		return true
	}
	return false
}

// NextStatus returns the state a ride moves to when the given signal is
// applied, or ErrIllegalTransition if the signal is not legal from the
// current state. Stale retries and out-of-order signals are rejected here
// rather than silently ignored so callers can tell them from bugs.
func NextStatus(current RideStatus, signal Signal) (RideStatus, error) {
	if current.IsTerminal() {
		return "", ErrIllegalTransition
	}

	if signal == SignalCancel {
		return RideStatusCancelled, nil
	}

	switch {
	case current == RideStatusAccepted && signal == SignalArrived:
		return RideStatusAtPickup, nil
	case current == RideStatusAtPickup && signal == SignalStart:
		return RideStatusInProgress, nil
	case current == RideStatusInProgress && signal == SignalFinish:
		return RideStatusCompleted, nil
	}

	return "", ErrIllegalTransition
}

// ValidServiceType reports whether s is a known service type.
func ValidServiceType(s ServiceType) bool {
	switch s {
	case ServiceTypeTaxi, ServiceTypeMototaxi, ServiceTypeDelivery:
		return true
	}
	return false
}

// RequiresDestination reports whether requests of this service type must
// carry a destination. Delivery requests may be open-ended.
func (s ServiceType) RequiresDestination() bool {
	return s != ServiceTypeDelivery
}
