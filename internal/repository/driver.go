package repository

import (
	"context"

	"boleia/internal/domain"
)

// DriverRepository defines the persistence operations for driver profiles.
type DriverRepository interface {
	// Create adds a new driver profile.
	Create(ctx context.Context, driver *domain.DriverProfile) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.DriverProfile, error)

	// UpdateStatusIf moves the driver from one status to another, only
	// if they are still in the expected status. This is the claim
	// primitive dispatch races on.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.DriverStatus) (bool, error)

	// SetActiveVehicle records the driver's active vehicle.
	SetActiveVehicle(ctx context.Context, id, vehicleID string) error
}

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create adds a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
}
