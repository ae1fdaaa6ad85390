package domain

import "time"

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeTripPayment TransactionType = "TRIP_PAYMENT"
	TransactionTypeTripEarning TransactionType = "TRIP_EARNING"
	TransactionTypePlatformFee TransactionType = "PLATFORM_FEE"
)

// TransactionStatus represents the state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

// Transaction is an immutable ledger entry recording a single signed
// balance movement. Entries are never mutated after creation.
type Transaction struct {
	ID        string
	UserID    string
	Amount    float64 // negative = debit, positive = credit
	Type      TransactionType
	RideID    string
	Status    TransactionStatus
	CreatedAt time.Time
}

// SplitPolicy determines how a final fare is divided at settlement.
// A zero FeeRate sends the entire fare to the driver.
type SplitPolicy struct {
	FeeRate           float64 // fraction of the fare retained by the platform, [0, 1)
	PlatformAccountID string  // ledger account credited with the fee
}

// Split returns the driver's share and the platform fee for the fare.
func (p SplitPolicy) Split(fare float64) (driverShare, platformFee float64) {
	platformFee = fare * p.FeeRate
	return fare - platformFee, platformFee
}

// Receipt summarizes a settled trip.
type Receipt struct {
	RideID      string
	PassengerID string
	DriverID    string
	Fare        float64
	DriverShare float64
	PlatformFee float64
	EntryIDs    []string
	SettledAt   time.Time
}
