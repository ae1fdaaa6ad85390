package postgres

import (
	"context"
	"database/sql"
	"errors"

	"boleia/internal/domain"
	"boleia/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, phone, wallet_balance, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		user.ID, user.Name, user.Phone, user.WalletBalance, user.CreatedAt)
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), wallet_balance, created_at
		FROM users WHERE id = $1
	`

	var user domain.User
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.WalletBalance,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
// It operates on the wallet_balance column of the users table.
type WalletRepository struct {
	q Querier
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

// Balance returns the user's current wallet balance.
func (r *WalletRepository) Balance(ctx context.Context, userID string) (float64, error) {
	query := `SELECT wallet_balance FROM users WHERE id = $1`

	var balance float64
	err := r.q.QueryRowContext(ctx, query, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}

	return balance, nil
}

// Debit subtracts amount from the balance. The balance guard lives in the
// WHERE clause so an insufficient balance shows up as zero rows affected
// rather than a negative wallet.
func (r *WalletRepository) Debit(ctx context.Context, userID string, amount float64) (bool, error) {
	query := `
		UPDATE users SET wallet_balance = wallet_balance - $1
		WHERE id = $2 AND wallet_balance >= $1
	`

	result, err := r.q.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return false, err
	}

	return oneRowAffected(result)
}

// Credit adds amount to the balance.
func (r *WalletRepository) Credit(ctx context.Context, userID string, amount float64) error {
	query := `UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return err
	}

	changed, err := oneRowAffected(result)
	if err != nil {
		return err
	}
	if !changed {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure implementations satisfy their interfaces.
var (
	_ repository.UserRepository   = (*UserRepository)(nil)
	_ repository.WalletRepository = (*WalletRepository)(nil)
)
