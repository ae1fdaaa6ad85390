package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"boleia/internal/domain"
	"boleia/internal/geo"
	"boleia/internal/repository"
)

// DispatcherInterface defines the dispatch contract. It allows testing
// the ride intake with mock implementations.
type DispatcherInterface interface {
	AssignNearestDriver(ctx context.Context, ride *domain.RideRequest) (*Assignment, error)
}

// Ensure DispatchService implements DispatcherInterface.
var _ DispatcherInterface = (*DispatchService)(nil)

// RideService handles ride request intake and reads.
type RideService struct {
	rideRepo   repository.RideRepository
	userRepo   repository.UserRepository
	dispatcher DispatcherInterface
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	dispatcher DispatcherInterface,
) *RideService {
	return &RideService{
		rideRepo:   rideRepo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
	}
}

// SubmitRideRequest contains the parameters for submitting a request.
type SubmitRideRequest struct {
	PassengerID string
	Origin      domain.Location
	Destination *domain.Location
	ServiceType domain.ServiceType
}

// SubmitRideResponse contains the result of submitting a request.
type SubmitRideResponse struct {
	Ride           *domain.RideRequest
	DriverAssigned bool
	DriverID       string
	VehicleID      string
}

// SubmitRideRequest validates and persists a new request, then runs
// dispatch synchronously. A dispatch that finds no driver is not an
// error for the caller: the ride comes back in NO_DRIVERS_FOUND and the
// passenger decides whether to re-request.
func (s *RideService) SubmitRideRequest(ctx context.Context, req SubmitRideRequest) (*SubmitRideResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, req.PassengerID); err != nil {
		return nil, err
	}

	ride := &domain.RideRequest{
		ID:          uuid.New().String(),
		PassengerID: req.PassengerID,
		Origin:      req.Origin,
		Destination: req.Destination,
		ServiceType: req.ServiceType,
		Status:      domain.RideStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	assignment, err := s.dispatcher.AssignNearestDriver(ctx, ride)
	if err != nil {
		if errors.Is(err, ErrNoDriverAvailable) {
			unmatched, getErr := s.rideRepo.GetByID(ctx, ride.ID)
			if getErr != nil {
				return nil, getErr
			}
			return &SubmitRideResponse{Ride: unmatched}, nil
		}
		return nil, err
	}

	return &SubmitRideResponse{
		Ride:           assignment.Ride,
		DriverAssigned: true,
		DriverID:       assignment.DriverID,
		VehicleID:      assignment.VehicleID,
	}, nil
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.RideRequest, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

// GetAllRides retrieves recent rides.
func (s *RideService) GetAllRides(ctx context.Context) ([]*domain.RideRequest, error) {
	return s.rideRepo.GetAll(ctx)
}

func (s *RideService) validate(req SubmitRideRequest) error {
	if req.PassengerID == "" {
		return ErrInvalidPassengerID
	}
	if !domain.ValidServiceType(req.ServiceType) {
		return ErrInvalidServiceType
	}
	if !geo.ValidCoordinates(req.Origin.Lat, req.Origin.Lng) {
		return ErrInvalidOrigin
	}
	if req.Destination == nil {
		if req.ServiceType.RequiresDestination() {
			return ErrInvalidDestination
		}
		return nil
	}
	if !geo.ValidCoordinates(req.Destination.Lat, req.Destination.Lng) {
		return ErrInvalidDestination
	}
	return nil
}
