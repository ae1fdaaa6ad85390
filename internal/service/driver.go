package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"boleia/internal/domain"
	"boleia/internal/geo"
	"boleia/internal/redis"
	"boleia/internal/repository"
	"boleia/internal/stream"
)

const locationGeohashPrecision = 7

// DriverService handles driver registration, availability toggles and
// position reporting.
type DriverService struct {
	driverRepo    repository.DriverRepository
	vehicleRepo   repository.VehicleRepository
	rideRepo      repository.RideRepository
	locationStore redis.LocationStoreInterface
	publisher     stream.Publisher
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	rideRepo repository.RideRepository,
	locationStore redis.LocationStoreInterface,
	publisher stream.Publisher,
) *DriverService {
	return &DriverService{
		driverRepo:    driverRepo,
		vehicleRepo:   vehicleRepo,
		rideRepo:      rideRepo,
		locationStore: locationStore,
		publisher:     publisher,
	}
}

// RegisterDriver creates a new driver profile. Drivers start OFFLINE
// and without a vehicle.
func (s *DriverService) RegisterDriver(ctx context.Context, fleetManagerID string) (*domain.DriverProfile, error) {
	driver := &domain.DriverProfile{
		ID:             uuid.New().String(),
		Status:         domain.DriverStatusOffline,
		FleetManagerID: fleetManagerID,
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// GetDriver retrieves a driver profile by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.DriverProfile, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// RegisterVehicle creates a vehicle for the driver and makes it their
// active vehicle.
func (s *DriverService) RegisterVehicle(ctx context.Context, driverID string, status domain.VehicleStatus, allowed []domain.ServiceType) (*domain.Vehicle, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	vehicle := &domain.Vehicle{
		ID:                  uuid.New().String(),
		DriverID:            driverID,
		Status:              status,
		AllowedServiceTypes: allowed,
	}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	if err := s.driverRepo.SetActiveVehicle(ctx, driverID, vehicle.ID); err != nil {
		return nil, err
	}
	return vehicle, nil
}

// GoOnline makes the driver available for dispatch. Already-online
// drivers pass through; a driver on a trip cannot toggle.
func (s *DriverService) GoOnline(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	switch driver.Status {
	case domain.DriverStatusOnline:
		return nil
	case domain.DriverStatusInTrip:
		return ErrDriverBusy
	}

	moved, err := s.driverRepo.UpdateStatusIf(ctx, driverID, domain.DriverStatusOffline, domain.DriverStatusOnline)
	if err != nil {
		return err
	}
	if !moved {
		return ErrDriverStateConflict
	}
	return nil
}

// GoOffline withdraws the driver from dispatch and drops them from the
// location index. A driver on a trip cannot toggle.
func (s *DriverService) GoOffline(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	switch driver.Status {
	case domain.DriverStatusOffline:
		return nil
	case domain.DriverStatusInTrip:
		return ErrDriverBusy
	}

	moved, err := s.driverRepo.UpdateStatusIf(ctx, driverID, domain.DriverStatusOnline, domain.DriverStatusOffline)
	if err != nil {
		return err
	}
	if !moved {
		return ErrDriverStateConflict
	}

	if s.locationStore != nil {
		if err := s.locationStore.Remove(ctx, driverID); err != nil {
			return err
		}
	}
	return nil
}

// ReportPosition records a driver's position in the live index. A
// driver on a trip additionally pushes the position to the ride's
// observers. Offline drivers are rejected so the index never carries
// undispatched entries.
func (s *DriverService) ReportPosition(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !geo.ValidCoordinates(lat, lng) {
		return ErrInvalidLocation
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if driver.Status == domain.DriverStatusOffline {
		return ErrDriverOffline
	}

	if err := s.locationStore.Update(ctx, driverID, lat, lng); err != nil {
		return err
	}

	if driver.Status != domain.DriverStatusInTrip || s.publisher == nil {
		return nil
	}

	ride, err := s.rideRepo.GetActiveByDriverID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	now := time.Now()
	s.publisher.PublishRideEvent(ctx, domain.RideEvent{
		Type:           domain.RideEventDriverPosition,
		RideID:         ride.ID,
		PassengerID:    ride.PassengerID,
		DriverID:       driverID,
		FleetManagerID: driver.FleetManagerID,
		Status:         ride.Status,
		Position: &domain.DriverPosition{
			DriverID:  driverID,
			Lat:       lat,
			Lng:       lng,
			Geohash:   geo.Encode(lat, lng, locationGeohashPrecision),
			UpdatedAt: now,
		},
		OccurredAt: now,
	})
	return nil
}
