package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"boleia/internal/domain"
	"boleia/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// Create adds a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, driver_id, status, allowed_service_types)
		VALUES ($1, $2, $3, $4)
	`

	allowed := make([]string, len(vehicle.AllowedServiceTypes))
	for i, s := range vehicle.AllowedServiceTypes {
		allowed[i] = string(s)
	}

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.DriverID,
		vehicle.Status,
		pq.Array(allowed),
	)
	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `
		SELECT id, driver_id, status, allowed_service_types
		FROM vehicles WHERE id = $1
	`

	var vehicle domain.Vehicle
	var allowed []string
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.DriverID,
		&vehicle.Status,
		pq.Array(&allowed),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	vehicle.AllowedServiceTypes = make([]domain.ServiceType, len(allowed))
	for i, s := range allowed {
		vehicle.AllowedServiceTypes[i] = domain.ServiceType(s)
	}

	return &vehicle, nil
}

// Ensure VehicleRepository implements repository.VehicleRepository.
var _ repository.VehicleRepository = (*VehicleRepository)(nil)
