package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"boleia/internal/domain"
	"boleia/internal/repository"
)

// ErrInvalidUser is returned when user registration input is incomplete.
var ErrInvalidUser = errors.New("invalid user data")

// UserService handles account registration and wallet reads. Balances
// are read-only here; the only writer is the settlement transaction.
type UserService struct {
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	ledgerRepo repository.LedgerRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, walletRepo repository.WalletRepository, ledgerRepo repository.LedgerRepository) *UserService {
	return &UserService{userRepo: userRepo, walletRepo: walletRepo, ledgerRepo: ledgerRepo}
}

// RegisterUser creates a new wallet-holding account.
func (s *UserService) RegisterUser(ctx context.Context, name, phone string, openingBalance float64) (*domain.User, error) {
	if name == "" {
		return nil, ErrInvalidUser
	}
	if openingBalance < 0 {
		return nil, ErrInvalidUser
	}

	user := &domain.User{
		ID:            uuid.New().String(),
		Name:          name,
		Phone:         phone,
		WalletBalance: openingBalance,
		CreatedAt:     time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	return s.userRepo.GetByID(ctx, userID)
}

// WalletBalance returns the user's current balance.
func (s *UserService) WalletBalance(ctx context.Context, userID string) (float64, error) {
	if userID == "" {
		return 0, ErrInvalidUser
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return 0, err
	}
	return s.walletRepo.Balance(ctx, userID)
}

// Transactions returns the user's ledger entries, newest first.
func (s *UserService) Transactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListByUser(ctx, userID)
}
