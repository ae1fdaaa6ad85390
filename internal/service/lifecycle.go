package service

import (
	"context"
	"time"

	"boleia/internal/domain"
	"boleia/internal/repository"
	"boleia/internal/stream"
)

// LifecycleService is the authoritative state machine for rides. All
// transitions on one ride are serialized by the conditional updates: a
// transition that lost a race surfaces as ErrIllegalTransition instead
// of silently overwriting the winner.
type LifecycleService struct {
	tx         repository.TxManager
	rideRepo   repository.RideRepository
	driverRepo repository.DriverRepository
	settlement *SettlementService
	publisher  stream.Publisher
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	tx repository.TxManager,
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	settlement *SettlementService,
	publisher stream.Publisher,
) *LifecycleService {
	return &LifecycleService{
		tx:         tx,
		rideRepo:   rideRepo,
		driverRepo: driverRepo,
		settlement: settlement,
		publisher:  publisher,
	}
}

// AdvanceRequest contains the parameters for advancing a ride.
type AdvanceRequest struct {
	RideID  string
	ActorID string
	Signal  domain.Signal
	Fare    float64 // required for SignalFinish, ignored otherwise
	Reason  string  // optional, for SignalCancel
}

// AdvanceRide applies a driver- or passenger-initiated signal to the
// ride. FINISH carries the final fare and triggers settlement; CANCEL
// reverts the assigned driver to ONLINE in the same transaction.
func (s *LifecycleService) AdvanceRide(ctx context.Context, req AdvanceRequest) (*domain.RideRequest, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	next, err := domain.NextStatus(ride.Status, req.Signal)
	if err != nil {
		return nil, err
	}

	if err := authorizeSignal(ride, req.ActorID, req.Signal); err != nil {
		return nil, err
	}

	switch req.Signal {
	case domain.SignalArrived, domain.SignalStart:
		moved, err := s.rideRepo.UpdateStatusIf(ctx, ride.ID, ride.Status, next)
		if err != nil {
			return nil, err
		}
		if !moved {
			// The ride moved underneath us; the retry is stale.
			return nil, domain.ErrIllegalTransition
		}

	case domain.SignalFinish:
		if _, err := s.settlement.SettleTrip(ctx, ride.ID, req.Fare, req.ActorID); err != nil {
			return nil, err
		}

	case domain.SignalCancel:
		if err := s.cancel(ctx, ride, req.Reason); err != nil {
			return nil, err
		}

	default:
		return nil, domain.ErrIllegalTransition
	}

	updated, err := s.rideRepo.GetByID(ctx, ride.ID)
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, updated)

	return updated, nil
}

// cancel moves the ride to CANCELLED and, when a driver was assigned,
// undoes the dispatch claim on their profile within the same transaction.
func (s *LifecycleService) cancel(ctx context.Context, ride *domain.RideRequest, reason string) error {
	return s.tx.WithinTx(ctx, func(r repository.Repos) error {
		cancelled, err := r.Rides.CancelIf(ctx, ride.ID, ride.Status, reason)
		if err != nil {
			return err
		}
		if !cancelled {
			return domain.ErrIllegalTransition
		}

		if ride.DriverID != "" {
			reverted, err := r.Drivers.UpdateStatusIf(ctx, ride.DriverID, domain.DriverStatusInTrip, domain.DriverStatusOnline)
			if err != nil {
				return err
			}
			if !reverted {
				return ErrDriverStateConflict
			}
		}

		return nil
	})
}

// authorizeSignal enforces who may send what: arrival, start and finish
// come only from the assigned driver; cancellation from the passenger or
// the assigned driver.
func authorizeSignal(ride *domain.RideRequest, actorID string, signal domain.Signal) error {
	if actorID == "" {
		return ErrActorNotOnRide
	}

	switch signal {
	case domain.SignalArrived, domain.SignalStart, domain.SignalFinish:
		if ride.DriverID != actorID {
			return ErrNotAssignedDriver
		}
	case domain.SignalCancel:
		if actorID != ride.PassengerID && actorID != ride.DriverID {
			return ErrActorNotOnRide
		}
	}

	return nil
}

func (s *LifecycleService) publishStatus(ctx context.Context, ride *domain.RideRequest) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishRideEvent(ctx, domain.RideEvent{
		Type:        domain.RideEventStatusChanged,
		RideID:      ride.ID,
		PassengerID: ride.PassengerID,
		DriverID:    ride.DriverID,
		Status:      ride.Status,
		Fare:        ride.FinalFare,
		OccurredAt:  time.Now(),
	})
}
