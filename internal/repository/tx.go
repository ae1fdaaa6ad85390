package repository

import "context"

// Repos bundles the repositories visible inside a transaction.
type Repos struct {
	Rides   RideRepository
	Drivers DriverRepository
	Wallets WalletRepository
	Ledger  LedgerRepository
}

// TxManager runs a function against transaction-scoped repositories.
// If fn returns an error every write made through r is rolled back;
// otherwise the transaction commits. Dispatch assignment and trip
// settlement are the two callers that need this all-or-nothing guarantee.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
