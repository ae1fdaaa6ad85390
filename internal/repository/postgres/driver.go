package postgres

import (
	"context"
	"database/sql"
	"errors"

	"boleia/internal/domain"
	"boleia/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a new driver profile.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.DriverProfile) error {
	query := `
		INSERT INTO drivers (id, status, active_vehicle_id, rating, fleet_manager_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Status,
		nullString(driver.ActiveVehicleID),
		driver.Rating,
		nullString(driver.FleetManagerID),
	)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.DriverProfile, error) {
	query := `
		SELECT id, status, COALESCE(active_vehicle_id, ''), rating,
			COALESCE(fleet_manager_id, '')
		FROM drivers WHERE id = $1
	`

	var driver domain.DriverProfile
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.Status,
		&driver.ActiveVehicleID,
		&driver.Rating,
		&driver.FleetManagerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}

// UpdateStatusIf moves the driver between statuses with a CAS guard.
// Two dispatches racing for the same driver both run this update; only
// one sees a row change.
func (r *DriverRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.DriverStatus) (bool, error) {
	query := `UPDATE drivers SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}

	return oneRowAffected(result)
}

// SetActiveVehicle records the driver's active vehicle.
func (r *DriverRepository) SetActiveVehicle(ctx context.Context, id, vehicleID string) error {
	query := `UPDATE drivers SET active_vehicle_id = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, vehicleID, id)
	if err != nil {
		return err
	}

	changed, err := oneRowAffected(result)
	if err != nil {
		return err
	}
	if !changed {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure DriverRepository implements repository.DriverRepository.
var _ repository.DriverRepository = (*DriverRepository)(nil)
