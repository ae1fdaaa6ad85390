package repository

import (
	"context"

	"boleia/internal/domain"
)

// UserRepository defines the persistence operations for wallet-holding
// accounts (passengers, drivers-as-payees, the platform account).
type UserRepository interface {
	// Create adds a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// WalletRepository mutates wallet balances. Balances move only through
// the settlement transaction; there is no unconditional setter.
type WalletRepository interface {
	// Balance returns the user's current wallet balance.
	Balance(ctx context.Context, userID string) (float64, error)

	// Debit subtracts amount from the user's balance, only if the
	// balance covers it. Reports whether the debit was applied.
	Debit(ctx context.Context, userID string, amount float64) (bool, error)

	// Credit adds amount to the user's balance.
	Credit(ctx context.Context, userID string, amount float64) error
}

// LedgerRepository appends and reads immutable transaction entries.
type LedgerRepository interface {
	// Append persists a new ledger entry. Entries are never updated.
	Append(ctx context.Context, entry *domain.Transaction) error

	// ListByUser retrieves a user's entries, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error)

	// ListByRide retrieves the entries recorded for a ride.
	ListByRide(ctx context.Context, rideID string) ([]*domain.Transaction, error)
}
