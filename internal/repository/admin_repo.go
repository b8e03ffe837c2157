package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// ========================================
// Admin Repository
// ========================================

// SQLiteAdminRepository implements AdminRepository for SQLite.
type SQLiteAdminRepository struct {
	db *sql.DB
}

// NewSQLiteAdminRepository creates a new SQLite admin repository.
func NewSQLiteAdminRepository(db *sql.DB) *SQLiteAdminRepository {
	return &SQLiteAdminRepository{db: db}
}

func (r *SQLiteAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	query := `INSERT INTO admins (user_id, email, added_by, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, admin.UserID, admin.Email,
		nullString(admin.AddedBy), admin.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteAdminRepository) Get(ctx context.Context, userID string) (*models.Admin, error) {
	query := `SELECT user_id, email, added_by, created_at FROM admins WHERE user_id = ?`
	var admin models.Admin
	var addedBy sql.NullString
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&admin.UserID, &admin.Email, &addedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	admin.AddedBy = addedBy.String
	admin.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &admin, nil
}

func (r *SQLiteAdminRepository) List(ctx context.Context) ([]*models.Admin, error) {
	query := `SELECT user_id, email, added_by, created_at FROM admins ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var admins []*models.Admin
	for rows.Next() {
		var admin models.Admin
		var addedBy sql.NullString
		var createdAt string
		if err := rows.Scan(&admin.UserID, &admin.Email, &addedBy, &createdAt); err != nil {
			return nil, err
		}
		admin.AddedBy = addedBy.String
		admin.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		admins = append(admins, &admin)
	}

	return admins, rows.Err()
}

func (r *SQLiteAdminRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE user_id = ?`, userID)
	return err
}
