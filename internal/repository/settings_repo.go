package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// ========================================
// Settings Repository
// ========================================

// SQLiteSettingsRepository implements SettingsRepository for SQLite.
type SQLiteSettingsRepository struct {
	db *sql.DB
}

// NewSQLiteSettingsRepository creates a new SQLite settings repository.
func NewSQLiteSettingsRepository(db *sql.DB) *SQLiteSettingsRepository {
	return &SQLiteSettingsRepository{db: db}
}

func (r *SQLiteSettingsRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	query := `SELECT key, value, is_secret, updated_by, updated_at FROM settings WHERE key = ?`
	var setting models.Setting
	var updatedBy sql.NullString
	var updatedAt string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&setting.Key, &setting.Value, &setting.IsSecret, &updatedBy, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	setting.UpdatedBy = updatedBy.String
	setting.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &setting, nil
}

func (r *SQLiteSettingsRepository) GetAll(ctx context.Context) ([]*models.Setting, error) {
	query := `SELECT key, value, is_secret, updated_by, updated_at FROM settings ORDER BY key`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var settings []*models.Setting
	for rows.Next() {
		var setting models.Setting
		var updatedBy sql.NullString
		var updatedAt string
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.IsSecret, &updatedBy, &updatedAt); err != nil {
			return nil, err
		}
		setting.UpdatedBy = updatedBy.String
		setting.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		settings = append(settings, &setting)
	}

	return settings, rows.Err()
}

func (r *SQLiteSettingsRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	query := `INSERT INTO settings (key, value, is_secret, updated_by, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			is_secret = excluded.is_secret,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, setting.Key, setting.Value, setting.IsSecret,
		nullString(setting.UpdatedBy), setting.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteSettingsRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}
