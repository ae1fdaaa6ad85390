package service

import "errors"

// Validation errors: rejected before any search or write, never retried.
var (
	// ErrInvalidPassengerID is returned when the passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidRideID is returned when the ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidOrigin is returned when origin coordinates are missing or invalid.
	ErrInvalidOrigin = errors.New("invalid origin coordinates")

	// ErrInvalidDestination is returned when destination coordinates are
	// missing for a service type that requires them, or invalid.
	ErrInvalidDestination = errors.New("invalid destination coordinates")

	// ErrInvalidServiceType is returned for an unknown service type.
	ErrInvalidServiceType = errors.New("invalid service type")

	// ErrInvalidLocation is returned when reported coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidFare is returned when the final fare is not positive.
	ErrInvalidFare = errors.New("invalid fare")

	// ErrEmptyMessage is returned when a chat message has no body.
	ErrEmptyMessage = errors.New("empty message body")
)

// Dispatch outcomes.
var (
	// ErrNoDriverAvailable is returned when no eligible driver exists
	// within the search radius. Terminal for the request; the passenger
	// must re-request.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrDispatchInProgress is returned when another dispatch attempt
	// already holds the ride.
	ErrDispatchInProgress = errors.New("dispatch already in progress for ride")

	// ErrRideNotDispatchable is returned when the ride left the
	// PENDING/SEARCHING states before assignment could happen.
	ErrRideNotDispatchable = errors.New("ride is no longer dispatchable")

	// errDriverClaimed signals that a concurrent dispatch won the
	// driver between ranking and assignment; the engine retries with
	// the next candidate.
	errDriverClaimed = errors.New("driver claimed by concurrent assignment")
)

// Precondition errors: surfaced to the caller, never retried
// automatically, and the data model is left exactly as it was.
var (
	// ErrNotAssignedDriver is returned when the acting driver is not
	// the ride's assigned driver.
	ErrNotAssignedDriver = errors.New("driver not assigned to this ride")

	// ErrActorNotOnRide is returned when the actor is neither the
	// ride's passenger nor its assigned driver.
	ErrActorNotOnRide = errors.New("actor does not belong to this ride")

	// ErrRideNotInProgress is returned when settlement is attempted on
	// a ride that is not IN_PROGRESS, including already-settled rides.
	ErrRideNotInProgress = errors.New("ride not in progress")

	// ErrInsufficientBalance is returned when the passenger's wallet
	// does not cover the final fare.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrRideClosed is returned when a message is sent to a ride in a
	// terminal state.
	ErrRideClosed = errors.New("ride is closed")

	// ErrDriverBusy is returned when a driver tries to toggle
	// online/offline while on a trip.
	ErrDriverBusy = errors.New("driver is on a trip")

	// ErrDriverOffline is returned when an offline driver reports a
	// position.
	ErrDriverOffline = errors.New("driver is offline")

	// ErrDriverStateConflict is returned when the driver's profile
	// changed underneath an atomic operation; the whole operation is
	// rolled back.
	ErrDriverStateConflict = errors.New("driver state changed concurrently")
)
