package domain

import "time"

// User represents a passenger (or any wallet-holding account) in the
// system. WalletBalance is mutated only by the settlement ledger's atomic
// transaction, never by direct assignment elsewhere.
type User struct {
	ID            string
	Name          string
	Phone         string
	WalletBalance float64
	CreatedAt     time.Time
}
