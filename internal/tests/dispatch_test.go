package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"boleia/internal/domain"
	"boleia/internal/redis"
	"boleia/internal/service"
)

func newDispatchFixture() (*service.DispatchService, *MockRideRepository, *MockDriverRepository, *MockVehicleRepository, *MockLocationStore, *MockPublisher) {
	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	vehicleRepo := NewMockVehicleRepository()
	walletRepo := NewMockWalletRepository()
	ledgerRepo := NewMockLedgerRepository()
	locationStore := NewMockLocationStore()
	lockStore := NewMockLockStore()
	publisher := NewMockPublisher()
	tx := NewMockTxManager(rideRepo, driverRepo, walletRepo, ledgerRepo)

	dispatch := service.NewDispatchService(tx, locationStore, lockStore, driverRepo, vehicleRepo, rideRepo, publisher, 50)
	return dispatch, rideRepo, driverRepo, vehicleRepo, locationStore, publisher
}

func addEligibleDriver(driverRepo *MockDriverRepository, vehicleRepo *MockVehicleRepository, locationStore *MockLocationStore, id string, lat, lng float64) {
	vehicleID := id + "-vehicle"
	driverRepo.AddDriver(&domain.DriverProfile{
		ID:              id,
		Status:          domain.DriverStatusOnline,
		ActiveVehicleID: vehicleID,
	})
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:       vehicleID,
		DriverID: id,
		Status:   domain.VehicleStatusActive,
	})
	locationStore.SetLocation(id, lat, lng)
}

func pendingRide(id string) *domain.RideRequest {
	return &domain.RideRequest{
		ID:          id,
		PassengerID: "passenger-1",
		Origin:      domain.Location{Lat: 38.72, Lng: -9.14},
		Destination: &domain.Location{Lat: 38.75, Lng: -9.15},
		ServiceType: domain.ServiceTypeTaxi,
		Status:      domain.RideStatusPending,
		CreatedAt:   time.Now(),
	}
}

func TestDispatch_AssignsNearestEligibleDriver(t *testing.T) {
	ctx := context.Background()
	dispatch, rideRepo, driverRepo, vehicleRepo, locationStore, _ := newDispatchFixture()

	// Far driver first, near driver second: insertion order must not matter.
	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-far", 38.80, -9.20)
	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-near", 38.721, -9.141)

	ride := pendingRide("ride-1")
	rideRepo.AddRide(ride)

	assignment, err := dispatch.AssignNearestDriver(ctx, ride)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if assignment.DriverID != "driver-near" {
		t.Errorf("expected driver-near, got %s", assignment.DriverID)
	}
	if assignment.Ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected ride ACCEPTED, got %s", assignment.Ride.Status)
	}
	if got := driverRepo.GetDriver("driver-near").Status; got != domain.DriverStatusInTrip {
		t.Errorf("expected assigned driver IN_TRIP, got %s", got)
	}
	if got := driverRepo.GetDriver("driver-far").Status; got != domain.DriverStatusOnline {
		t.Errorf("expected far driver untouched, got %s", got)
	}
}

func TestDispatch_SkipsOfflineDrivers(t *testing.T) {
	ctx := context.Background()
	dispatch, rideRepo, driverRepo, vehicleRepo, locationStore, _ := newDispatchFixture()

	// Nearest driver is offline but still has a stale index entry.
	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-offline", 38.721, -9.141)
	driverRepo.GetDriver("driver-offline").Status = domain.DriverStatusOffline
	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-online", 38.73, -9.15)

	ride := pendingRide("ride-1")
	rideRepo.AddRide(ride)

	assignment, err := dispatch.AssignNearestDriver(ctx, ride)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if assignment.DriverID != "driver-online" {
		t.Errorf("expected driver-online, got %s", assignment.DriverID)
	}
}

func TestDispatch_SkipsDriverWithoutActiveVehicle(t *testing.T) {
	ctx := context.Background()
	dispatch, rideRepo, driverRepo, vehicleRepo, locationStore, _ := newDispatchFixture()

	driverRepo.AddDriver(&domain.DriverProfile{
		ID:     "driver-no-vehicle",
		Status: domain.DriverStatusOnline,
	})
	locationStore.SetLocation("driver-no-vehicle", 38.721, -9.141)
	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-ok", 38.73, -9.15)

	ride := pendingRide("ride-1")
	rideRepo.AddRide(ride)

	assignment, err := dispatch.AssignNearestDriver(ctx, ride)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if assignment.DriverID != "driver-ok" {
		t.Errorf("expected driver-ok, got %s", assignment.DriverID)
	}
}

func TestDispatch_SkipsVehicleInMaintenance(t *testing.T) {
	ctx := context.Background()
	dispatch, rideRepo, driverRepo, vehicleRepo, locationStore, _ := newDispatchFixture()

	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-maint", 38.721, -9.141)
	vehicleRepo.vehicles["driver-maint-vehicle"].Status = domain.VehicleStatusMaintenance
	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-ok", 38.73, -9.15)

	ride := pendingRide("ride-1")
	rideRepo.AddRide(ride)

	assignment, err := dispatch.AssignNearestDriver(ctx, ride)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if assignment.DriverID != "driver-ok" {
		t.Errorf("expected driver-ok, got %s", assignment.DriverID)
	}
}

func TestDispatch_SkipsVehicleNotAllowingServiceType(t *testing.T) {
	ctx := context.Background()
	dispatch, rideRepo, driverRepo, vehicleRepo, locationStore, _ := newDispatchFixture()

	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-moto", 38.721, -9.141)
	vehicleRepo.vehicles["driver-moto-vehicle"].AllowedServiceTypes = []domain.ServiceType{domain.ServiceTypeMototaxi}
	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-taxi", 38.73, -9.15)

	ride := pendingRide("ride-1") // TAXI
	rideRepo.AddRide(ride)

	assignment, err := dispatch.AssignNearestDriver(ctx, ride)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if assignment.DriverID != "driver-taxi" {
		t.Errorf("expected driver-taxi, got %s", assignment.DriverID)
	}
}

func TestDispatch_NoEligibleDriver_MarksNoDriversFound(t *testing.T) {
	ctx := context.Background()
	dispatch, rideRepo, driverRepo, vehicleRepo, locationStore, _ := newDispatchFixture()

	// Only driver is well outside the 50km radius.
	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-porto", 41.15, -8.61)

	ride := pendingRide("ride-1")
	rideRepo.AddRide(ride)

	_, err := dispatch.AssignNearestDriver(ctx, ride)
	if !errors.Is(err, service.ErrNoDriverAvailable) {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}

	if got := rideRepo.GetRide("ride-1").Status; got != domain.RideStatusNoDriversFound {
		t.Errorf("expected NO_DRIVERS_FOUND, got %s", got)
	}
}

func TestDispatch_EmptyIndex_MarksNoDriversFound(t *testing.T) {
	ctx := context.Background()
	dispatch, rideRepo, _, _, _, _ := newDispatchFixture()

	ride := pendingRide("ride-1")
	rideRepo.AddRide(ride)

	_, err := dispatch.AssignNearestDriver(ctx, ride)
	if !errors.Is(err, service.ErrNoDriverAvailable) {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}
	if got := rideRepo.GetRide("ride-1").Status; got != domain.RideStatusNoDriversFound {
		t.Errorf("expected NO_DRIVERS_FOUND, got %s", got)
	}
}

func TestDispatch_PublishesDriverAssignedEvent(t *testing.T) {
	ctx := context.Background()
	dispatch, rideRepo, driverRepo, vehicleRepo, locationStore, publisher := newDispatchFixture()

	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-1", 38.721, -9.141)

	ride := pendingRide("ride-1")
	rideRepo.AddRide(ride)

	if _, err := dispatch.AssignNearestDriver(ctx, ride); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	events := publisher.EventsOfType(domain.RideEventDriverAssigned)
	if len(events) != 1 {
		t.Fatalf("expected 1 DRIVER_ASSIGNED event, got %d", len(events))
	}
	if events[0].DriverID != "driver-1" || events[0].RideID != "ride-1" {
		t.Errorf("unexpected event payload: %+v", events[0])
	}
}

func TestDispatch_ConcurrentRequests_DriverAssignedAtMostOnce(t *testing.T) {
	ctx := context.Background()
	dispatch, rideRepo, driverRepo, vehicleRepo, locationStore, _ := newDispatchFixture()

	// One driver, many competing ride requests.
	addEligibleDriver(driverRepo, vehicleRepo, locationStore, "driver-1", 38.721, -9.141)

	const requests = 10
	rides := make([]*domain.RideRequest, 0, requests)
	for i := 0; i < requests; i++ {
		ride := pendingRide("ride-" + string(rune('a'+i)))
		rideRepo.AddRide(ride)
		rides = append(rides, ride)
	}

	var wg sync.WaitGroup
	results := make(chan error, requests)
	for _, ride := range rides {
		wg.Add(1)
		go func(r *domain.RideRequest) {
			defer wg.Done()
			_, err := dispatch.AssignNearestDriver(ctx, r)
			results <- err
		}(ride)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, service.ErrNoDriverAvailable) {
			t.Fatalf("unexpected dispatch error: %v", err)
		}
	}

	if wins != 1 {
		t.Fatalf("expected exactly one winning dispatch, got %d", wins)
	}

	accepted := 0
	for _, ride := range rides {
		if rideRepo.GetRide(ride.ID).Status == domain.RideStatusAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("expected exactly one ACCEPTED ride, got %d", accepted)
	}
	if got := driverRepo.GetDriver("driver-1").Status; got != domain.DriverStatusInTrip {
		t.Errorf("expected driver IN_TRIP, got %s", got)
	}
}

func TestRankCandidates_RefiltersByExactDistance(t *testing.T) {
	// The index over-covers, so a location past the radius can come back.
	locations := []redis.DriverLocation{
		{DriverID: "inside", Lat: 38.73, Lng: -9.15},
		{DriverID: "outside", Lat: 39.30, Lng: -9.14}, // ~64km north
	}

	candidates := service.RankCandidates(38.72, -9.14, 50, locations)

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].DriverID != "inside" {
		t.Errorf("expected inside, got %s", candidates[0].DriverID)
	}
}

func TestRankCandidates_OrdersByDistanceThenID(t *testing.T) {
	locations := []redis.DriverLocation{
		{DriverID: "driver-b", Lat: 38.72, Lng: -9.14}, // at origin
		{DriverID: "driver-a", Lat: 38.72, Lng: -9.14}, // at origin, ties on distance
		{DriverID: "driver-c", Lat: 38.75, Lng: -9.16},
	}

	candidates := service.RankCandidates(38.72, -9.14, 50, locations)

	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].DriverID != "driver-a" || candidates[1].DriverID != "driver-b" {
		t.Errorf("expected tie broken by id, got %s then %s", candidates[0].DriverID, candidates[1].DriverID)
	}
	if candidates[2].DriverID != "driver-c" {
		t.Errorf("expected driver-c last, got %s", candidates[2].DriverID)
	}
}

func TestDriverEligible_RequiresOnlineAndActiveVehicle(t *testing.T) {
	vehicle := &domain.Vehicle{ID: "v1", DriverID: "d1", Status: domain.VehicleStatusActive}

	online := &domain.DriverProfile{ID: "d1", Status: domain.DriverStatusOnline, ActiveVehicleID: "v1"}
	if !service.DriverEligible(online, vehicle, domain.ServiceTypeTaxi) {
		t.Error("expected online driver with active vehicle to be eligible")
	}

	offline := &domain.DriverProfile{ID: "d1", Status: domain.DriverStatusOffline, ActiveVehicleID: "v1"}
	if service.DriverEligible(offline, vehicle, domain.ServiceTypeTaxi) {
		t.Error("offline driver must not be eligible")
	}

	inTrip := &domain.DriverProfile{ID: "d1", Status: domain.DriverStatusInTrip, ActiveVehicleID: "v1"}
	if service.DriverEligible(inTrip, vehicle, domain.ServiceTypeTaxi) {
		t.Error("driver on a trip must not be eligible")
	}

	pending := &domain.Vehicle{ID: "v1", DriverID: "d1", Status: domain.VehicleStatusPendingApproval}
	if service.DriverEligible(online, pending, domain.ServiceTypeTaxi) {
		t.Error("unapproved vehicle must not be eligible")
	}
}
