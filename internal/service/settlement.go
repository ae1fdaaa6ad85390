package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"boleia/internal/domain"
	"boleia/internal/repository"
	"boleia/internal/stream"
)

// SettlementService atomically settles a finished trip: it moves the
// fare between the passenger's and the driver's wallets, records the
// matching ledger entries, completes the ride and releases the driver.
// Every effect happens in one transaction or not at all.
type SettlementService struct {
	tx        repository.TxManager
	publisher stream.Publisher
	policy    domain.SplitPolicy
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(tx repository.TxManager, publisher stream.Publisher, policy domain.SplitPolicy) *SettlementService {
	return &SettlementService{tx: tx, publisher: publisher, policy: policy}
}

// BuildLedgerEntries returns the entries a settlement appends: the
// passenger debit, the driver credit, and a platform-fee entry when the
// split retains one. The amounts always sum to zero.
func BuildLedgerEntries(ride *domain.RideRequest, fare, driverShare, platformFee float64, platformAccountID string, at time.Time) []*domain.Transaction {
	entries := []*domain.Transaction{
		{
			ID:        uuid.New().String(),
			UserID:    ride.PassengerID,
			Amount:    -fare,
			Type:      domain.TransactionTypeTripPayment,
			RideID:    ride.ID,
			Status:    domain.TransactionStatusCompleted,
			CreatedAt: at,
		},
		{
			ID:        uuid.New().String(),
			UserID:    ride.DriverID,
			Amount:    driverShare,
			Type:      domain.TransactionTypeTripEarning,
			RideID:    ride.ID,
			Status:    domain.TransactionStatusCompleted,
			CreatedAt: at,
		},
	}

	if platformFee > 0 && platformAccountID != "" {
		entries = append(entries, &domain.Transaction{
			ID:        uuid.New().String(),
			UserID:    platformAccountID,
			Amount:    platformFee,
			Type:      domain.TransactionTypePlatformFee,
			RideID:    ride.ID,
			Status:    domain.TransactionStatusCompleted,
			CreatedAt: at,
		})
	}

	return entries
}

// SettleTrip settles the ride for the given final fare. Preconditions,
// checked inside the transaction: the ride is IN_PROGRESS, the acting
// driver is the assigned driver, and the passenger's balance covers the
// fare. Re-invoking on an already-completed ride fails the IN_PROGRESS
// check, which is what makes retries safe against double charging.
func (s *SettlementService) SettleTrip(ctx context.Context, rideID string, finalFare float64, actingDriverID string) (*domain.Receipt, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if actingDriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if finalFare <= 0 {
		return nil, ErrInvalidFare
	}

	var receipt *domain.Receipt
	var event domain.RideEvent

	err := s.tx.WithinTx(ctx, func(r repository.Repos) error {
		ride, err := r.Rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}

		if ride.Status != domain.RideStatusInProgress {
			return ErrRideNotInProgress
		}
		if ride.DriverID != actingDriverID {
			return ErrNotAssignedDriver
		}

		driverShare, platformFee := s.policy.Split(finalFare)

		debited, err := r.Wallets.Debit(ctx, ride.PassengerID, finalFare)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientBalance
		}

		if err := r.Wallets.Credit(ctx, ride.DriverID, driverShare); err != nil {
			return err
		}
		if platformFee > 0 && s.policy.PlatformAccountID != "" {
			if err := r.Wallets.Credit(ctx, s.policy.PlatformAccountID, platformFee); err != nil {
				return err
			}
		}

		now := time.Now()
		entries := BuildLedgerEntries(ride, finalFare, driverShare, platformFee, s.policy.PlatformAccountID, now)
		entryIDs := make([]string, 0, len(entries))
		for _, entry := range entries {
			if err := r.Ledger.Append(ctx, entry); err != nil {
				return err
			}
			entryIDs = append(entryIDs, entry.ID)
		}

		completed, err := r.Rides.CompleteIf(ctx, rideID, finalFare)
		if err != nil {
			return err
		}
		if !completed {
			return ErrRideNotInProgress
		}

		released, err := r.Drivers.UpdateStatusIf(ctx, ride.DriverID, domain.DriverStatusInTrip, domain.DriverStatusOnline)
		if err != nil {
			return err
		}
		if !released {
			return ErrDriverStateConflict
		}

		receipt = &domain.Receipt{
			RideID:      rideID,
			PassengerID: ride.PassengerID,
			DriverID:    ride.DriverID,
			Fare:        finalFare,
			DriverShare: driverShare,
			PlatformFee: platformFee,
			EntryIDs:    entryIDs,
			SettledAt:   now,
		}
		event = domain.RideEvent{
			Type:        domain.RideEventSettled,
			RideID:      rideID,
			PassengerID: ride.PassengerID,
			DriverID:    ride.DriverID,
			Status:      domain.RideStatusCompleted,
			Fare:        finalFare,
			OccurredAt:  now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishRideEvent(ctx, event)
	}

	return receipt, nil
}
