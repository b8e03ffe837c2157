package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// ========================================
// Anonymous Usage Repository
// ========================================

// SQLiteAnonymousUsageRepository implements AnonymousUsageRepository for SQLite.
type SQLiteAnonymousUsageRepository struct {
	db *sql.DB
}

// NewSQLiteAnonymousUsageRepository creates a new SQLite anonymous usage repository.
func NewSQLiteAnonymousUsageRepository(db *sql.DB) *SQLiteAnonymousUsageRepository {
	return &SQLiteAnonymousUsageRepository{db: db}
}

func (r *SQLiteAnonymousUsageRepository) Get(ctx context.Context, anonymousID string) (*models.AnonymousUsage, error) {
	query := `SELECT anonymous_id, today_generation_count, last_generated_date, created_at, updated_at
		FROM anonymous_usage WHERE anonymous_id = ?`
	var usage models.AnonymousUsage
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, anonymousID).Scan(
		&usage.AnonymousID, &usage.TodayGenerationCount, &usage.LastGeneratedDate, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	usage.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	usage.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &usage, nil
}

// IncrementForDate bumps the daily counter in one upsert. A stored
// date different from the given one means a new calendar day, so the
// counter restarts at 1 instead of accumulating.
func (r *SQLiteAnonymousUsageRepository) IncrementForDate(ctx context.Context, anonymousID, date string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `INSERT INTO anonymous_usage (anonymous_id, today_generation_count, last_generated_date, created_at, updated_at)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT(anonymous_id) DO UPDATE SET
			today_generation_count = CASE
				WHEN anonymous_usage.last_generated_date = excluded.last_generated_date
				THEN anonymous_usage.today_generation_count + 1
				ELSE 1
			END,
			last_generated_date = excluded.last_generated_date,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, anonymousID, date, now, now)
	return err
}
