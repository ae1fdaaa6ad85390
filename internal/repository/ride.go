package repository

import (
	"context"

	"boleia/internal/domain"
)

// RideRepository defines the persistence operations for ride requests.
// The conditional (…If) operations are compare-and-set primitives: they
// apply the write only when the ride is still in the expected state and
// report whether a row was changed, so concurrent writers lose cleanly
// instead of clobbering each other.
type RideRepository interface {
	// Create persists a new ride request.
	Create(ctx context.Context, ride *domain.RideRequest) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.RideRequest, error)

	// GetAll retrieves recent rides.
	GetAll(ctx context.Context) ([]*domain.RideRequest, error)

	// GetActiveByDriverID retrieves the ride currently assigned to the
	// driver (ACCEPTED, AT_PICKUP or IN_PROGRESS). Returns ErrNotFound
	// when the driver has no active ride.
	GetActiveByDriverID(ctx context.Context, driverID string) (*domain.RideRequest, error)

	// AssignIf sets driverID/vehicleID and moves the ride to ACCEPTED,
	// only if it is still PENDING or SEARCHING.
	AssignIf(ctx context.Context, id, driverID, vehicleID string) (bool, error)

	// UpdateStatusIf moves the ride from one status to another, only if
	// it is still in the expected status.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.RideStatus) (bool, error)

	// CompleteIf marks the ride COMPLETED with the final fare, only if
	// it is still IN_PROGRESS.
	CompleteIf(ctx context.Context, id string, fare float64) (bool, error)

	// CancelIf marks the ride CANCELLED with a reason, only if it is
	// still in the expected status.
	CancelIf(ctx context.Context, id string, from domain.RideStatus, reason string) (bool, error)
}
