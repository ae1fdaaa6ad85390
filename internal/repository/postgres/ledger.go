package postgres

import (
	"context"
	"database/sql"

	"boleia/internal/domain"
	"boleia/internal/repository"
)

// LedgerRepository is a PostgreSQL implementation of repository.LedgerRepository.
type LedgerRepository struct {
	q Querier
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{q: db}
}

// NewLedgerRepositoryWithTx creates a ledger repository using a transaction.
func NewLedgerRepositoryWithTx(tx *sql.Tx) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Append persists a new ledger entry. There is deliberately no UPDATE or
// DELETE on this table.
func (r *LedgerRepository) Append(ctx context.Context, entry *domain.Transaction) error {
	query := `
		INSERT INTO ledger_entries (id, user_id, amount, type, ride_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Amount,
		entry.Type,
		entry.RideID,
		entry.Status,
		entry.CreatedAt,
	)
	return err
}

// ListByUser retrieves a user's entries, newest first.
func (r *LedgerRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, ride_id, status, created_at
		FROM ledger_entries WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100
	`
	return r.list(ctx, query, userID)
}

// ListByRide retrieves the entries recorded for a ride.
func (r *LedgerRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, ride_id, status, created_at
		FROM ledger_entries WHERE ride_id = $1 ORDER BY created_at
	`
	return r.list(ctx, query, rideID)
}

func (r *LedgerRepository) list(ctx context.Context, query string, arg any) ([]*domain.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Transaction
	for rows.Next() {
		var entry domain.Transaction
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Amount,
			&entry.Type,
			&entry.RideID,
			&entry.Status,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Ensure LedgerRepository implements repository.LedgerRepository.
var _ repository.LedgerRepository = (*LedgerRepository)(nil)
