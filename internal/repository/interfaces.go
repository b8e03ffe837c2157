// Package repository defines repository interfaces for data access.
// Note: User identity is handled by the external auth provider; the
// user_id fields reference its IDs.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// StyleRepository defines methods for style catalog data access.
type StyleRepository interface {
	Create(ctx context.Context, style *models.Style) error
	GetByID(ctx context.Context, id string) (*models.Style, error)
	// List returns styles filtered by status; pass "" for all statuses.
	List(ctx context.Context, status models.StyleStatus) ([]*models.Style, error)
	Update(ctx context.Context, style *models.Style) error
	Delete(ctx context.Context, id string) error
	// GetByPrompt looks a style up by prompt text, compared trimmed
	// and case-insensitively.
	GetByPrompt(ctx context.Context, prompt string) (*models.Style, error)
	SetStatus(ctx context.Context, ids []string, status models.StyleStatus) (int64, error)
}

// TokenRepository defines methods for user token balance data access.
type TokenRepository interface {
	Get(ctx context.Context, userID string) (*models.UserTokenData, error)
	Create(ctx context.Context, data *models.UserTokenData) error
	// DeductIfSufficient atomically decrements the balance only when it
	// covers the amount. Returns false when the balance was insufficient.
	DeductIfSufficient(ctx context.Context, userID string, amount int64) (bool, error)
	Credit(ctx context.Context, userID string, amount int64) error
	// Set overwrites the balance. Admin-only path.
	Set(ctx context.Context, userID string, tokens int64) error
	Delete(ctx context.Context, userID string) error
}

// TokenTransactionRepository defines methods for the token ledger.
type TokenTransactionRepository interface {
	Create(ctx context.Context, tx *models.TokenTransaction) error
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.TokenTransaction, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// AnonymousUsageRepository defines methods for the anonymous daily quota.
type AnonymousUsageRepository interface {
	Get(ctx context.Context, anonymousID string) (*models.AnonymousUsage, error)
	// IncrementForDate upserts the counter for the given UTC date,
	// resetting it first when the stored date differs.
	IncrementForDate(ctx context.Context, anonymousID, date string) error
}

// GenerationRepository defines methods for generation history data access.
type GenerationRepository interface {
	Create(ctx context.Context, gen *models.Generation) error
	GetByID(ctx context.Context, id string) (*models.Generation, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Generation, error)
	GetByAnonymousID(ctx context.Context, anonymousID string, limit, offset int) ([]*models.Generation, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// TopupRepository defines methods for topup transaction data access.
type TopupRepository interface {
	Create(ctx context.Context, topup *models.TopupTransaction) error
	GetByID(ctx context.Context, id string) (*models.TopupTransaction, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.TopupTransaction, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.TopupTransaction, error)
	List(ctx context.Context, status models.TopupStatus, limit, offset int) ([]*models.TopupTransaction, error)
	UpdateStatus(ctx context.Context, orderID string, status models.TopupStatus) error
	// GetStalePending returns pending topups created before the cutoff.
	GetStalePending(ctx context.Context, before time.Time, limit int) ([]*models.TopupTransaction, error)
	// Settle marks the topup settled, credits the user and writes the
	// ledger row in a single database transaction. Returns
	// ErrAlreadySettled when the credit was already applied.
	Settle(ctx context.Context, orderID string, ledger *models.TokenTransaction) (*models.TopupTransaction, error)
}

// TopupPlanRepository defines methods for purchasable package data access.
type TopupPlanRepository interface {
	Create(ctx context.Context, plan *models.TopupPlan) error
	GetByID(ctx context.Context, id string) (*models.TopupPlan, error)
	// List returns plans ordered by sort_order; activeOnly filters out
	// disabled packages.
	List(ctx context.Context, activeOnly bool) ([]*models.TopupPlan, error)
	Update(ctx context.Context, plan *models.TopupPlan) error
	Delete(ctx context.Context, id string) error
}

// SettingsRepository defines methods for runtime settings data access.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	GetAll(ctx context.Context) ([]*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
	Delete(ctx context.Context, key string) error
}

// AdminRepository defines methods for back-office authorization.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	Get(ctx context.Context, userID string) (*models.Admin, error)
	List(ctx context.Context) ([]*models.Admin, error)
	Delete(ctx context.Context, userID string) error
}

// Repositories holds all repository instances.
type Repositories struct {
	Style            StyleRepository
	Token            TokenRepository
	TokenTransaction TokenTransactionRepository
	AnonymousUsage   AnonymousUsageRepository
	Generation       GenerationRepository
	Topup            TopupRepository
	TopupPlan        TopupPlanRepository
	Settings         SettingsRepository
	Admin            AdminRepository
	Analytics        *SQLiteAnalyticsRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Style:            NewSQLiteStyleRepository(db),
		Token:            NewSQLiteTokenRepository(db),
		TokenTransaction: NewSQLiteTokenTransactionRepository(db),
		AnonymousUsage:   NewSQLiteAnonymousUsageRepository(db),
		Generation:       NewSQLiteGenerationRepository(db),
		Topup:            NewSQLiteTopupRepository(db),
		TopupPlan:        NewSQLiteTopupPlanRepository(db),
		Settings:         NewSQLiteSettingsRepository(db),
		Admin:            NewSQLiteAdminRepository(db),
		Analytics:        NewSQLiteAnalyticsRepository(db),
	}
}
