package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// ========================================
// Style Repository
// ========================================

// SQLiteStyleRepository implements StyleRepository for SQLite.
type SQLiteStyleRepository struct {
	db *sql.DB
}

// NewSQLiteStyleRepository creates a new SQLite style repository.
func NewSQLiteStyleRepository(db *sql.DB) *SQLiteStyleRepository {
	return &SQLiteStyleRepository{db: db}
}

func (r *SQLiteStyleRepository) Create(ctx context.Context, style *models.Style) error {
	query := `INSERT INTO styles (id, name, prompt, image_url, status, category, tags, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		style.ID, style.Name, style.Prompt, nullString(style.ImageURL), string(style.Status),
		nullString(style.Category), joinTags(style.Tags), style.SortOrder,
		style.CreatedAt.Format(time.RFC3339), style.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteStyleRepository) GetByID(ctx context.Context, id string) (*models.Style, error) {
	query := `SELECT id, name, prompt, image_url, status, category, tags, sort_order, created_at, updated_at
		FROM styles WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteStyleRepository) GetByPrompt(ctx context.Context, prompt string) (*models.Style, error) {
	query := `SELECT id, name, prompt, image_url, status, category, tags, sort_order, created_at, updated_at
		FROM styles WHERE LOWER(TRIM(prompt)) = LOWER(TRIM(?))`
	return r.scanOne(r.db.QueryRowContext(ctx, query, prompt))
}

func (r *SQLiteStyleRepository) List(ctx context.Context, status models.StyleStatus) ([]*models.Style, error) {
	query := `SELECT id, name, prompt, image_url, status, category, tags, sort_order, created_at, updated_at
		FROM styles`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var styles []*models.Style
	for rows.Next() {
		style, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		styles = append(styles, style)
	}

	return styles, rows.Err()
}

func (r *SQLiteStyleRepository) Update(ctx context.Context, style *models.Style) error {
	query := `UPDATE styles SET name = ?, prompt = ?, image_url = ?, status = ?, category = ?, tags = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		style.Name, style.Prompt, nullString(style.ImageURL), string(style.Status),
		nullString(style.Category), joinTags(style.Tags), style.SortOrder,
		style.UpdatedAt.Format(time.RFC3339), style.ID)
	return err
}

func (r *SQLiteStyleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM styles WHERE id = ?`, id)
	return err
}

// SetStatus flips the given styles to the target status. An empty ID
// list means every row.
func (r *SQLiteStyleRepository) SetStatus(ctx context.Context, ids []string, status models.StyleStatus) (int64, error) {
	query := `UPDATE styles SET status = ?, updated_at = ? WHERE status != ?`
	args := []any{string(status), time.Now().UTC().Format(time.RFC3339), string(status)}
	if len(ids) > 0 {
		query += ` AND id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteStyleRepository) scanOne(row *sql.Row) (*models.Style, error) {
	style, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return style, nil
}

func (r *SQLiteStyleRepository) scanRow(row rowScanner) (*models.Style, error) {
	var style models.Style
	var imageURL, category, tags sql.NullString
	var status, createdAt, updatedAt string

	if err := row.Scan(&style.ID, &style.Name, &style.Prompt, &imageURL, &status,
		&category, &tags, &style.SortOrder, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	style.ImageURL = imageURL.String
	style.Category = category.String
	style.Status = models.StyleStatus(status)
	if tags.Valid && tags.String != "" {
		style.Tags = strings.Split(tags.String, ",")
	}
	style.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	style.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &style, nil
}

// joinTags stores tags as a comma separated string.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// nullString converts an empty string to a NULL parameter.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
