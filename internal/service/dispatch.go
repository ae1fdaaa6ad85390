package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"boleia/internal/domain"
	"boleia/internal/geo"
	"boleia/internal/redis"
	"boleia/internal/repository"
	"boleia/internal/stream"
)

const (
	// DefaultSearchRadiusKm bounds the dispatch search disk.
	DefaultSearchRadiusKm = 50.0

	driverLockTTL = 10 * time.Second
	rideLockTTL   = 30 * time.Second
)

// DispatchService matches ride requests to the nearest eligible driver.
type DispatchService struct {
	tx            repository.TxManager
	locationStore redis.LocationStoreInterface
	lockStore     redis.LockStoreInterface
	driverRepo    repository.DriverRepository
	vehicleRepo   repository.VehicleRepository
	rideRepo      repository.RideRepository
	publisher     stream.Publisher
	radiusKm      float64
}

// NewDispatchService creates a new DispatchService. radiusKm <= 0 falls
// back to DefaultSearchRadiusKm.
func NewDispatchService(
	tx repository.TxManager,
	locationStore redis.LocationStoreInterface,
	lockStore redis.LockStoreInterface,
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	rideRepo repository.RideRepository,
	publisher stream.Publisher,
	radiusKm float64,
) *DispatchService {
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}
	return &DispatchService{
		tx:            tx,
		locationStore: locationStore,
		lockStore:     lockStore,
		driverRepo:    driverRepo,
		vehicleRepo:   vehicleRepo,
		rideRepo:      rideRepo,
		publisher:     publisher,
		radiusKm:      radiusKm,
	}
}

// Assignment is the result of a successful dispatch.
type Assignment struct {
	DriverID  string
	VehicleID string
	Ride      *domain.RideRequest
}

// Candidate is a ranked dispatch candidate.
type Candidate struct {
	DriverID string
	Distance float64 // exact great-circle km to the request origin
}

// RankCandidates re-filters index results by exact great-circle distance
// and orders them nearest first. The index over-covers the search disk
// (its cells are square-ish and straddle the boundary), so the Haversine
// distance, not the index, decides membership. Distance ties break on
// driver id to keep the walk deterministic.
func RankCandidates(originLat, originLng, radiusKm float64, locations []redis.DriverLocation) []Candidate {
	candidates := make([]Candidate, 0, len(locations))
	for _, loc := range locations {
		dist := geo.Haversine(originLat, originLng, loc.Lat, loc.Lng)
		if dist > radiusKm {
			continue
		}
		candidates = append(candidates, Candidate{DriverID: loc.DriverID, Distance: dist})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].DriverID < candidates[j].DriverID
	})

	return candidates
}

// DriverEligible reports whether a driver/vehicle pair may serve the
// request's service type: driver ONLINE with an active vehicle whose
// status is ACTIVE and whose allow-list includes the service type.
func DriverEligible(driver *domain.DriverProfile, vehicle *domain.Vehicle, serviceType domain.ServiceType) bool {
	if driver == nil || driver.Status != domain.DriverStatusOnline || driver.ActiveVehicleID == "" {
		return false
	}
	if vehicle == nil || vehicle.ID != driver.ActiveVehicleID || vehicle.Status != domain.VehicleStatusActive {
		return false
	}
	return vehicle.Allows(serviceType)
}

// AssignNearestDriver finds the nearest eligible driver and atomically
// assigns the ride to them. The policy is greedy nearest-eligible: it
// trades global optimality for constant per-request latency.
func (s *DispatchService) AssignNearestDriver(ctx context.Context, ride *domain.RideRequest) (*Assignment, error) {
	if !geo.ValidCoordinates(ride.Origin.Lat, ride.Origin.Lng) {
		return nil, ErrInvalidOrigin
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireRideLock(ctx, ride.ID, rideLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrDispatchInProgress
		}
		defer func() { _ = s.lockStore.ReleaseRideLock(ctx, ride.ID) }()
	}

	// Visible to observers as "being matched". Already-SEARCHING rides
	// (a retried dispatch) pass through.
	if _, err := s.rideRepo.UpdateStatusIf(ctx, ride.ID, domain.RideStatusPending, domain.RideStatusSearching); err != nil {
		return nil, err
	}

	locations, err := s.locationStore.FindNearby(ctx, ride.Origin.Lat, ride.Origin.Lng, s.radiusKm)
	if err != nil {
		return nil, err
	}

	candidates := RankCandidates(ride.Origin.Lat, ride.Origin.Lng, s.radiusKm, locations)

	for _, candidate := range candidates {
		driver, err := s.driverRepo.GetByID(ctx, candidate.DriverID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // stale index entry
			}
			return nil, err
		}

		if driver.Status != domain.DriverStatusOnline || driver.ActiveVehicleID == "" {
			continue
		}

		vehicle, err := s.vehicleRepo.GetByID(ctx, driver.ActiveVehicleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}

		if !DriverEligible(driver, vehicle, ride.ServiceType) {
			continue
		}

		if s.lockStore != nil {
			locked, err := s.lockStore.AcquireDriverLock(ctx, driver.ID, driverLockTTL)
			if err != nil {
				return nil, err
			}
			if !locked {
				// Another dispatch is talking to this driver.
				continue
			}
		}

		err = s.assign(ctx, ride.ID, driver.ID, vehicle.ID)
		if err != nil {
			if s.lockStore != nil {
				_ = s.lockStore.ReleaseDriverLock(ctx, driver.ID)
			}
			if errors.Is(err, errDriverClaimed) {
				// Lost the race for this driver; the ranked list is
				// still valid, move on to the next candidate.
				continue
			}
			return nil, err
		}

		assigned, err := s.rideRepo.GetByID(ctx, ride.ID)
		if err != nil {
			return nil, err
		}

		s.publish(ctx, assigned, driver)

		return &Assignment{DriverID: driver.ID, VehicleID: vehicle.ID, Ride: assigned}, nil
	}

	// Candidate list exhausted. Not retried automatically; the
	// passenger must re-request.
	if _, err := s.rideRepo.UpdateStatusIf(ctx, ride.ID, domain.RideStatusSearching, domain.RideStatusNoDriversFound); err != nil {
		return nil, err
	}

	return nil, ErrNoDriverAvailable
}

// assign performs the atomic claim: ride gets the driver/vehicle and
// flips to ACCEPTED, driver flips ONLINE→IN_TRIP, all or nothing. Either
// CAS failing aborts the transaction, so two concurrent requests can
// never both take the same driver.
func (s *DispatchService) assign(ctx context.Context, rideID, driverID, vehicleID string) error {
	return s.tx.WithinTx(ctx, func(r repository.Repos) error {
		assigned, err := r.Rides.AssignIf(ctx, rideID, driverID, vehicleID)
		if err != nil {
			return err
		}
		if !assigned {
			return ErrRideNotDispatchable
		}

		claimed, err := r.Drivers.UpdateStatusIf(ctx, driverID, domain.DriverStatusOnline, domain.DriverStatusInTrip)
		if err != nil {
			return err
		}
		if !claimed {
			return errDriverClaimed
		}

		return nil
	})
}

func (s *DispatchService) publish(ctx context.Context, ride *domain.RideRequest, driver *domain.DriverProfile) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishRideEvent(ctx, domain.RideEvent{
		Type:           domain.RideEventDriverAssigned,
		RideID:         ride.ID,
		PassengerID:    ride.PassengerID,
		DriverID:       driver.ID,
		FleetManagerID: driver.FleetManagerID,
		Status:         ride.Status,
		OccurredAt:     time.Now(),
	})
}
