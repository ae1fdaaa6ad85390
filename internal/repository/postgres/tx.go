package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"boleia/internal/repository"
)

// TxManager implements repository.TxManager on a *sql.DB. Each call runs
// fn against repositories bound to a single transaction; the dispatch
// assignment and the settlement are the two serialization points that
// depend on this.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn inside a serializable transaction. Any error from fn
// rolls back every write made through the scoped repositories.
func (m *TxManager) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	repos := repository.Repos{
		Rides:   NewRideRepositoryWithTx(tx),
		Drivers: NewDriverRepositoryWithTx(tx),
		Wallets: NewWalletRepositoryWithTx(tx),
		Ledger:  NewLedgerRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Ensure TxManager implements repository.TxManager.
var _ repository.TxManager = (*TxManager)(nil)
