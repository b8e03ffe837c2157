package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/repository"
)

// Sentinel errors for token operations.
var (
	// ErrInsufficientBalance is returned when a deduction would push
	// the balance below zero.
	ErrInsufficientBalance = errors.New("insufficient token balance")
	// ErrNoTokenAccount is returned when the user has no balance row.
	ErrNoTokenAccount = errors.New("token account not found")
)

// TokenService manages user token balances and the ledger. Every
// mutation writes exactly one ledger row with the resulting balance.
type TokenService struct {
	repos    *repository.Repositories
	settings *SettingsService
	logger   *slog.Logger
}

// NewTokenService creates a new token service.
func NewTokenService(repos *repository.Repositories, settings *SettingsService, logger *slog.Logger) *TokenService {
	return &TokenService{
		repos:    repos,
		settings: settings,
		logger:   logger,
	}
}

// EnsureAccount creates the balance row with the initial grant if the
// user has none yet. Safe to call on every sign-in.
func (s *TokenService) EnsureAccount(ctx context.Context, userID string) (*models.UserTokenData, error) {
	existing, err := s.repos.Token.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token account: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	grant := s.settings.InitialTokenGrant(ctx)
	now := time.Now().UTC()
	account := &models.UserTokenData{
		UserID:    userID,
		Tokens:    grant,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Token.Create(ctx, account); err != nil {
		// Lost a race with a concurrent sign-in; the other writer's row wins.
		created, getErr := s.repos.Token.Get(ctx, userID)
		if getErr == nil && created != nil {
			return created, nil
		}
		return nil, fmt.Errorf("failed to create token account: %w", err)
	}

	if grant > 0 {
		s.writeLedger(ctx, userID, models.TxTypeGrant, grant, grant, "", "initial sign-up grant")
	}

	s.logger.Info("token account created", "user_id", userID, "initial_grant", grant)
	return account, nil
}

// GetBalance returns the user's current balance.
func (s *TokenService) GetBalance(ctx context.Context, userID string) (*models.UserTokenData, error) {
	account, err := s.repos.Token.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance: %w", err)
	}
	if account == nil {
		return nil, ErrNoTokenAccount
	}
	return account, nil
}

// Deduct removes amount tokens if the balance covers it and records
// the ledger entry. Returns ErrInsufficientBalance otherwise.
func (s *TokenService) Deduct(ctx context.Context, userID string, amount int64, ref, description string) error {
	if amount <= 0 {
		return fmt.Errorf("deduction amount must be positive, got %d", amount)
	}

	ok, err := s.repos.Token.DeductIfSufficient(ctx, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to deduct tokens: %w", err)
	}
	if !ok {
		return ErrInsufficientBalance
	}

	account, err := s.repos.Token.Get(ctx, userID)
	var balanceAfter int64
	if err == nil && account != nil {
		balanceAfter = account.Tokens
	}
	s.writeLedger(ctx, userID, models.TxTypeGeneration, -amount, balanceAfter, ref, description)

	return nil
}

// Credit adds amount tokens and records the ledger entry. Used for
// refunds and admin adjustments; topup settlement credits happen inside
// the repository's settlement transaction instead.
func (s *TokenService) Credit(ctx context.Context, userID string, amount int64, txType models.TokenTransactionType, ref, description string) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	if err := s.repos.Token.Credit(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to credit tokens: %w", err)
	}

	account, err := s.repos.Token.Get(ctx, userID)
	var balanceAfter int64
	if err == nil && account != nil {
		balanceAfter = account.Tokens
	}
	s.writeLedger(ctx, userID, txType, amount, balanceAfter, ref, description)

	return nil
}

// Adjust applies a signed admin adjustment. Negative deltas use the
// conditional decrement, so the balance cannot go below zero.
func (s *TokenService) Adjust(ctx context.Context, userID string, delta int64, adminID, reason string) error {
	if delta == 0 {
		return fmt.Errorf("adjustment delta must be non-zero")
	}

	if delta > 0 {
		if err := s.repos.Token.Credit(ctx, userID, delta); err != nil {
			return fmt.Errorf("failed to apply adjustment: %w", err)
		}
	} else {
		ok, err := s.repos.Token.DeductIfSufficient(ctx, userID, -delta)
		if err != nil {
			return fmt.Errorf("failed to apply adjustment: %w", err)
		}
		if !ok {
			return ErrInsufficientBalance
		}
	}

	account, err := s.repos.Token.Get(ctx, userID)
	var balanceAfter int64
	if err == nil && account != nil {
		balanceAfter = account.Tokens
	}
	s.writeLedger(ctx, userID, models.TxTypeAdjustment, delta, balanceAfter, adminID, reason)

	s.logger.Info("balance adjusted", "user_id", userID, "delta", delta, "admin_id", adminID)
	return nil
}

// SetBalance overwrites the user's balance. Breaks the ledger's
// arithmetic chain, so the overwrite itself is recorded as admin_set.
func (s *TokenService) SetBalance(ctx context.Context, userID string, tokens int64, adminID, reason string) error {
	if tokens < 0 {
		return fmt.Errorf("balance cannot be negative, got %d", tokens)
	}

	if err := s.repos.Token.Set(ctx, userID, tokens); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}

	s.writeLedger(ctx, userID, models.TxTypeAdminSet, 0, tokens, adminID, reason)

	s.logger.Info("balance overwritten", "user_id", userID, "tokens", tokens, "admin_id", adminID)
	return nil
}

// History returns the user's ledger entries, newest first.
func (s *TokenService) History(ctx context.Context, userID string, limit, offset int) ([]*models.TokenTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := s.repos.TokenTransaction.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get token history: %w", err)
	}
	return entries, nil
}

// DeleteAccount removes the balance row and ledger for a deleted user.
func (s *TokenService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repos.TokenTransaction.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete token ledger: %w", err)
	}
	if err := s.repos.Token.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete token account: %w", err)
	}
	return nil
}

// writeLedger records a balance mutation. Ledger failures are logged
// rather than propagated: the balance change already happened and must
// not be reported as failed.
func (s *TokenService) writeLedger(ctx context.Context, userID string, txType models.TokenTransactionType, amount, balanceAfter int64, ref, description string) {
	err := s.repos.TokenTransaction.Create(ctx, &models.TokenTransaction{
		ID:           ulid.Make().String(),
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Ref:          ref,
		Description:  description,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to write ledger entry",
			"user_id", userID,
			"type", txType,
			"amount", amount,
			"error", err,
		)
	}
}
