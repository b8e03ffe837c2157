package service

import (
	"context"
	"errors"
	"testing"

	"github.com/editaja/editaja-api/internal/config"
	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/repository"
)

func newTestTokenService(initialGrant int64) (*TokenService, *mockTokenRepository, *mockLedgerRepository) {
	tokenRepo := newMockTokenRepository()
	ledgerRepo := newMockLedgerRepository()
	repos := &repository.Repositories{
		Token:            tokenRepo,
		TokenTransaction: ledgerRepo,
		Settings:         newMockSettingsRepository(),
	}
	cfg := &config.Config{InitialTokenGrant: initialGrant, TokenCostPerGenerate: 2, MaxAnonymousGenerations: 3}
	settings := NewSettingsService(cfg, repos, nil, testLogger())
	svc := NewTokenService(repos, settings, testLogger())
	return svc, tokenRepo, ledgerRepo
}

func TestEnsureAccount(t *testing.T) {
	svc, _, ledgerRepo := newTestTokenService(10)
	ctx := context.Background()

	account, err := svc.EnsureAccount(ctx, "user_1")
	if err != nil {
		t.Fatalf("EnsureAccount() error = %v", err)
	}
	if account.Tokens != 10 {
		t.Errorf("initial balance = %d, want 10", account.Tokens)
	}

	entries := ledgerRepo.all()
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	if entries[0].Type != models.TxTypeGrant || entries[0].Amount != 10 {
		t.Errorf("grant entry = %+v", entries[0])
	}

	// Second call must not grant again.
	again, err := svc.EnsureAccount(ctx, "user_1")
	if err != nil {
		t.Fatalf("EnsureAccount() second call error = %v", err)
	}
	if again.Tokens != 10 {
		t.Errorf("balance after repeat call = %d, want 10", again.Tokens)
	}
	if len(ledgerRepo.all()) != 1 {
		t.Errorf("repeat call wrote another ledger entry")
	}
}

func TestEnsureAccount_ZeroGrant(t *testing.T) {
	svc, _, ledgerRepo := newTestTokenService(0)
	ctx := context.Background()

	account, err := svc.EnsureAccount(ctx, "user_1")
	if err != nil {
		t.Fatalf("EnsureAccount() error = %v", err)
	}
	if account.Tokens != 0 {
		t.Errorf("balance = %d, want 0", account.Tokens)
	}
	if len(ledgerRepo.all()) != 0 {
		t.Error("zero grant should not write a ledger entry")
	}
}

func TestDeduct(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		balance int64
		amount  int64
		wantErr error
		wantBal int64
	}{
		{"sufficient balance", 10, 2, nil, 8},
		{"exact balance", 2, 2, nil, 0},
		{"insufficient balance", 1, 2, ErrInsufficientBalance, 1},
		{"zero balance", 0, 2, ErrInsufficientBalance, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tokenRepo, ledgerRepo := newTestTokenService(0)
			tokenRepo.setBalance("user_1", tt.balance)

			err := svc.Deduct(ctx, "user_1", tt.amount, "gen-1", "generation: Anime")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Deduct() error = %v, want %v", err, tt.wantErr)
			}

			account, _ := tokenRepo.Get(ctx, "user_1")
			if account.Tokens != tt.wantBal {
				t.Errorf("balance = %d, want %d", account.Tokens, tt.wantBal)
			}

			entries := ledgerRepo.all()
			if tt.wantErr == nil {
				if len(entries) != 1 {
					t.Fatalf("ledger entries = %d, want 1", len(entries))
				}
				e := entries[0]
				if e.Type != models.TxTypeGeneration || e.Amount != -tt.amount || e.BalanceAfter != tt.wantBal || e.Ref != "gen-1" {
					t.Errorf("ledger entry = %+v", e)
				}
			} else if len(entries) != 0 {
				t.Error("failed deduction must not write a ledger entry")
			}
		})
	}
}

func TestDeduct_InvalidAmount(t *testing.T) {
	svc, tokenRepo, _ := newTestTokenService(0)
	tokenRepo.setBalance("user_1", 10)

	if err := svc.Deduct(context.Background(), "user_1", 0, "", ""); err == nil {
		t.Error("expected error for zero amount")
	}
	if err := svc.Deduct(context.Background(), "user_1", -5, "", ""); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestCredit(t *testing.T) {
	svc, tokenRepo, ledgerRepo := newTestTokenService(0)
	ctx := context.Background()
	tokenRepo.setBalance("user_1", 5)

	if err := svc.Credit(ctx, "user_1", 20, models.TxTypeTopup, "ORDER-1", "diamond topup"); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}

	account, _ := tokenRepo.Get(ctx, "user_1")
	if account.Tokens != 25 {
		t.Errorf("balance = %d, want 25", account.Tokens)
	}

	entries := ledgerRepo.all()
	if len(entries) != 1 || entries[0].BalanceAfter != 25 || entries[0].Ref != "ORDER-1" {
		t.Errorf("ledger entries = %+v", entries)
	}
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("positive delta", func(t *testing.T) {
		svc, tokenRepo, ledgerRepo := newTestTokenService(0)
		tokenRepo.setBalance("user_1", 5)

		if err := svc.Adjust(ctx, "user_1", 7, "admin_1", "support goodwill"); err != nil {
			t.Fatalf("Adjust() error = %v", err)
		}
		account, _ := tokenRepo.Get(ctx, "user_1")
		if account.Tokens != 12 {
			t.Errorf("balance = %d, want 12", account.Tokens)
		}
		entries := ledgerRepo.all()
		if len(entries) != 1 || entries[0].Type != models.TxTypeAdjustment || entries[0].Ref != "admin_1" {
			t.Errorf("ledger entries = %+v", entries)
		}
	})

	t.Run("negative delta", func(t *testing.T) {
		svc, tokenRepo, _ := newTestTokenService(0)
		tokenRepo.setBalance("user_1", 5)

		if err := svc.Adjust(ctx, "user_1", -3, "admin_1", "abuse clawback"); err != nil {
			t.Fatalf("Adjust() error = %v", err)
		}
		account, _ := tokenRepo.Get(ctx, "user_1")
		if account.Tokens != 2 {
			t.Errorf("balance = %d, want 2", account.Tokens)
		}
	})

	t.Run("negative delta exceeding balance", func(t *testing.T) {
		svc, tokenRepo, _ := newTestTokenService(0)
		tokenRepo.setBalance("user_1", 5)

		err := svc.Adjust(ctx, "user_1", -10, "admin_1", "clawback")
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("Adjust() error = %v, want ErrInsufficientBalance", err)
		}
		account, _ := tokenRepo.Get(ctx, "user_1")
		if account.Tokens != 5 {
			t.Errorf("balance changed on failed adjustment: %d", account.Tokens)
		}
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		svc, _, _ := newTestTokenService(0)
		if err := svc.Adjust(ctx, "user_1", 0, "admin_1", ""); err == nil {
			t.Error("expected error for zero delta")
		}
	})
}

func TestSetBalance(t *testing.T) {
	svc, tokenRepo, ledgerRepo := newTestTokenService(0)
	ctx := context.Background()
	tokenRepo.setBalance("user_1", 5)

	if err := svc.SetBalance(ctx, "user_1", 100, "admin_1", "migration backfill"); err != nil {
		t.Fatalf("SetBalance() error = %v", err)
	}

	account, _ := tokenRepo.Get(ctx, "user_1")
	if account.Tokens != 100 {
		t.Errorf("balance = %d, want 100", account.Tokens)
	}

	entries := ledgerRepo.all()
	if len(entries) != 1 || entries[0].Type != models.TxTypeAdminSet || entries[0].BalanceAfter != 100 {
		t.Errorf("ledger entries = %+v", entries)
	}

	if err := svc.SetBalance(ctx, "user_1", -1, "admin_1", ""); err == nil {
		t.Error("expected error for negative balance")
	}
}

func TestGetBalance_NoAccount(t *testing.T) {
	svc, _, _ := newTestTokenService(0)
	_, err := svc.GetBalance(context.Background(), "unknown")
	if !errors.Is(err, ErrNoTokenAccount) {
		t.Fatalf("GetBalance() error = %v, want ErrNoTokenAccount", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	svc, tokenRepo, ledgerRepo := newTestTokenService(10)
	ctx := context.Background()

	if _, err := svc.EnsureAccount(ctx, "user_1"); err != nil {
		t.Fatalf("EnsureAccount() error = %v", err)
	}
	if err := svc.DeleteAccount(ctx, "user_1"); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	account, _ := tokenRepo.Get(ctx, "user_1")
	if account != nil {
		t.Error("account still exists after deletion")
	}
	if entries, _ := ledgerRepo.GetByUserID(ctx, "user_1", 10, 0); len(entries) != 0 {
		t.Error("ledger entries remain after deletion")
	}
}
