package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"boleia/internal/domain"
	"boleia/internal/service"
)

// mockDispatcher lets ride intake tests control the dispatch outcome.
type mockDispatcher struct {
	assignment *service.Assignment
	err        error
	rideRepo   *MockRideRepository

	CallCount int32
}

func (m *mockDispatcher) AssignNearestDriver(ctx context.Context, ride *domain.RideRequest) (*service.Assignment, error) {
	m.CallCount++
	if m.err != nil {
		if errors.Is(m.err, service.ErrNoDriverAvailable) && m.rideRepo != nil {
			m.rideRepo.UpdateStatusIf(ctx, ride.ID, domain.RideStatusPending, domain.RideStatusNoDriversFound)
		}
		return nil, m.err
	}
	if m.assignment != nil {
		m.assignment.Ride = ride
	}
	return m.assignment, nil
}

func newRideFixture(dispatcher service.DispatcherInterface) (*service.RideService, *MockRideRepository, *MockUserRepository) {
	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "passenger-1", Name: "Ana", WalletBalance: 50, CreatedAt: time.Now()})
	return service.NewRideService(rideRepo, userRepo, dispatcher), rideRepo, userRepo
}

func validSubmit() service.SubmitRideRequest {
	return service.SubmitRideRequest{
		PassengerID: "passenger-1",
		ServiceType: domain.ServiceTypeTaxi,
		Origin:      domain.Location{Lat: 38.72, Lng: -9.14},
		Destination: &domain.Location{Lat: 38.75, Lng: -9.15},
	}
}

func TestRideSubmission_ValidRequest_CreatesAndDispatches(t *testing.T) {
	ctx := context.Background()
	dispatcher := &mockDispatcher{assignment: &service.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}}
	rideService, rideRepo, _ := newRideFixture(dispatcher)

	result, err := rideService.SubmitRideRequest(ctx, validSubmit())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if !result.DriverAssigned {
		t.Error("expected driver assigned")
	}
	if result.DriverID != "driver-1" {
		t.Errorf("expected driver-1, got %s", result.DriverID)
	}
	if rideRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 create, got %d", rideRepo.CreateCallCount)
	}
	if dispatcher.CallCount != 1 {
		t.Errorf("expected 1 dispatch, got %d", dispatcher.CallCount)
	}
	if result.Ride.ID == "" {
		t.Error("expected generated ride id")
	}
}

func TestRideSubmission_NoDriverAvailable_ReturnsRideNotError(t *testing.T) {
	ctx := context.Background()
	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "passenger-1", Name: "Ana"})
	dispatcher := &mockDispatcher{err: service.ErrNoDriverAvailable, rideRepo: rideRepo}
	rideService := service.NewRideService(rideRepo, userRepo, dispatcher)

	result, err := rideService.SubmitRideRequest(ctx, validSubmit())
	if err != nil {
		t.Fatalf("no-driver outcome must not be an error: %v", err)
	}

	if result.DriverAssigned {
		t.Error("expected no driver assigned")
	}
	if result.Ride.Status != domain.RideStatusNoDriversFound {
		t.Errorf("expected NO_DRIVERS_FOUND, got %s", result.Ride.Status)
	}
}

func TestRideSubmission_UnknownPassenger_Rejected(t *testing.T) {
	ctx := context.Background()
	dispatcher := &mockDispatcher{}
	rideService, rideRepo, _ := newRideFixture(dispatcher)

	req := validSubmit()
	req.PassengerID = "ghost"

	if _, err := rideService.SubmitRideRequest(ctx, req); err == nil {
		t.Fatal("expected error for unknown passenger")
	}
	if rideRepo.CreateCallCount != 0 {
		t.Errorf("no ride must be created, got %d creates", rideRepo.CreateCallCount)
	}
}

func TestRideSubmission_MissingPassengerID_Rejected(t *testing.T) {
	ctx := context.Background()
	rideService, _, _ := newRideFixture(&mockDispatcher{})

	req := validSubmit()
	req.PassengerID = ""

	_, err := rideService.SubmitRideRequest(ctx, req)
	if !errors.Is(err, service.ErrInvalidPassengerID) {
		t.Fatalf("expected ErrInvalidPassengerID, got %v", err)
	}
}

func TestRideSubmission_InvalidOriginCoordinates_Rejected(t *testing.T) {
	ctx := context.Background()
	rideService, _, _ := newRideFixture(&mockDispatcher{})

	for _, origin := range []domain.Location{
		{Lat: 91, Lng: -9.14},
		{Lat: -91, Lng: -9.14},
		{Lat: 38.72, Lng: 181},
		{Lat: 38.72, Lng: -181},
	} {
		req := validSubmit()
		req.Origin = origin

		_, err := rideService.SubmitRideRequest(ctx, req)
		if !errors.Is(err, service.ErrInvalidOrigin) {
			t.Errorf("origin %+v: expected ErrInvalidOrigin, got %v", origin, err)
		}
	}
}

func TestRideSubmission_UnknownServiceType_Rejected(t *testing.T) {
	ctx := context.Background()
	rideService, _, _ := newRideFixture(&mockDispatcher{})

	req := validSubmit()
	req.ServiceType = "HELICOPTER"

	_, err := rideService.SubmitRideRequest(ctx, req)
	if !errors.Is(err, service.ErrInvalidServiceType) {
		t.Fatalf("expected ErrInvalidServiceType, got %v", err)
	}
}

func TestRideSubmission_TaxiWithoutDestination_Rejected(t *testing.T) {
	ctx := context.Background()
	rideService, _, _ := newRideFixture(&mockDispatcher{})

	req := validSubmit()
	req.Destination = nil

	_, err := rideService.SubmitRideRequest(ctx, req)
	if !errors.Is(err, service.ErrInvalidDestination) {
		t.Fatalf("expected ErrInvalidDestination, got %v", err)
	}
}

func TestRideSubmission_DeliveryWithoutDestination_Allowed(t *testing.T) {
	ctx := context.Background()
	dispatcher := &mockDispatcher{assignment: &service.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}}
	rideService, _, _ := newRideFixture(dispatcher)

	req := validSubmit()
	req.ServiceType = domain.ServiceTypeDelivery
	req.Destination = nil

	if _, err := rideService.SubmitRideRequest(ctx, req); err != nil {
		t.Fatalf("open-ended delivery must be accepted: %v", err)
	}
}

func TestRideSubmission_CreatedRideStartsPending(t *testing.T) {
	ctx := context.Background()

	// Capture the ride as the dispatcher first sees it.
	var seen domain.RideStatus
	dispatcher := &dispatchRecorder{onAssign: func(ride *domain.RideRequest) { seen = ride.Status }}
	rideService, _, _ := newRideFixture(dispatcher)

	if _, err := rideService.SubmitRideRequest(ctx, validSubmit()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if seen != domain.RideStatusPending {
		t.Errorf("dispatch must receive a PENDING ride, got %s", seen)
	}
}

// dispatchRecorder observes the ride handed to dispatch.
type dispatchRecorder struct {
	onAssign func(ride *domain.RideRequest)
}

func (d *dispatchRecorder) AssignNearestDriver(ctx context.Context, ride *domain.RideRequest) (*service.Assignment, error) {
	d.onAssign(ride)
	return &service.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1", Ride: ride}, nil
}
