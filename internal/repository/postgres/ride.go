package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"boleia/internal/domain"
	"boleia/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, passenger_id, origin_address, origin_lat, origin_lng,
	dest_address, dest_lat, dest_lng, service_type, status, driver_id,
	vehicle_id, final_fare, cancelled_at, cancel_reason, created_at`

// Create persists a new ride request.
func (r *RideRepository) Create(ctx context.Context, ride *domain.RideRequest) error {
	query := `
		INSERT INTO rides (id, passenger_id, origin_address, origin_lat, origin_lng,
			dest_address, dest_lat, dest_lng, service_type, status, driver_id,
			vehicle_id, final_fare, cancelled_at, cancel_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	var destAddress sql.NullString
	var destLat, destLng sql.NullFloat64
	if ride.Destination != nil {
		destAddress = sql.NullString{String: ride.Destination.Address, Valid: true}
		destLat = sql.NullFloat64{Float64: ride.Destination.Lat, Valid: true}
		destLng = sql.NullFloat64{Float64: ride.Destination.Lng, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.PassengerID,
		ride.Origin.Address,
		ride.Origin.Lat,
		ride.Origin.Lng,
		destAddress,
		destLat,
		destLng,
		ride.ServiceType,
		ride.Status,
		nullString(ride.DriverID),
		nullString(ride.VehicleID),
		ride.FinalFare,
		nullTime(ride.CancelledAt),
		nullString(ride.CancelReason),
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// GetAll retrieves recent rides.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.RideRequest
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// GetActiveByDriverID retrieves the ride currently assigned to the driver.
func (r *RideRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM rides
		WHERE driver_id = $1 AND status IN ($2, $3, $4)
		LIMIT 1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, driverID,
		domain.RideStatusAccepted, domain.RideStatusAtPickup, domain.RideStatusInProgress))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// AssignIf sets driver/vehicle and moves the ride to ACCEPTED only while
// it is still unassigned. The status guard in the WHERE clause is what
// makes concurrent assignments lose instead of double-writing.
func (r *RideRepository) AssignIf(ctx context.Context, id, driverID, vehicleID string) (bool, error) {
	query := `
		UPDATE rides SET status = $1, driver_id = $2, vehicle_id = $3
		WHERE id = $4 AND status IN ($5, $6)
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.RideStatusAccepted, driverID, vehicleID, id,
		domain.RideStatusPending, domain.RideStatusSearching)
	if err != nil {
		return false, err
	}

	return oneRowAffected(result)
}

// UpdateStatusIf moves the ride between statuses with a CAS guard.
func (r *RideRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.RideStatus) (bool, error) {
	query := `UPDATE rides SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}

	return oneRowAffected(result)
}

// CompleteIf marks the ride COMPLETED with the final fare only while it
// is still IN_PROGRESS.
func (r *RideRepository) CompleteIf(ctx context.Context, id string, fare float64) (bool, error) {
	query := `
		UPDATE rides SET status = $1, final_fare = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.RideStatusCompleted, fare, id, domain.RideStatusInProgress)
	if err != nil {
		return false, err
	}

	return oneRowAffected(result)
}

// CancelIf marks the ride CANCELLED only while it is still in the
// expected status.
func (r *RideRepository) CancelIf(ctx context.Context, id string, from domain.RideStatus, reason string) (bool, error) {
	query := `
		UPDATE rides SET status = $1, cancelled_at = $2, cancel_reason = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.RideStatusCancelled, time.Now(), nullString(reason), id, from)
	if err != nil {
		return false, err
	}

	return oneRowAffected(result)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRide(s scanner) (*domain.RideRequest, error) {
	var ride domain.RideRequest
	var destAddress sql.NullString
	var destLat, destLng sql.NullFloat64
	var driverID, vehicleID, cancelReason sql.NullString
	var cancelledAt sql.NullTime

	err := s.Scan(
		&ride.ID,
		&ride.PassengerID,
		&ride.Origin.Address,
		&ride.Origin.Lat,
		&ride.Origin.Lng,
		&destAddress,
		&destLat,
		&destLng,
		&ride.ServiceType,
		&ride.Status,
		&driverID,
		&vehicleID,
		&ride.FinalFare,
		&cancelledAt,
		&cancelReason,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if destLat.Valid && destLng.Valid {
		ride.Destination = &domain.Location{
			Address: destAddress.String,
			Lat:     destLat.Float64,
			Lng:     destLng.Float64,
		}
	}
	ride.DriverID = driverID.String
	ride.VehicleID = vehicleID.String
	ride.CancelReason = cancelReason.String
	if cancelledAt.Valid {
		ride.CancelledAt = cancelledAt.Time
	}

	return &ride, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func oneRowAffected(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// Ensure RideRepository implements repository.RideRepository.
var _ repository.RideRepository = (*RideRepository)(nil)
