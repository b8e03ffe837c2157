package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// ========================================
// Generation Repository
// ========================================

// SQLiteGenerationRepository implements GenerationRepository for SQLite.
type SQLiteGenerationRepository struct {
	db *sql.DB
}

// NewSQLiteGenerationRepository creates a new SQLite generation repository.
func NewSQLiteGenerationRepository(db *sql.DB) *SQLiteGenerationRepository {
	return &SQLiteGenerationRepository{db: db}
}

const generationColumns = `id, user_id, anonymous_id, style_id, style_name, prompt, original_image_url, generated_image_urls, location, tokens_charged, created_at`

func (r *SQLiteGenerationRepository) Create(ctx context.Context, gen *models.Generation) error {
	query := `INSERT INTO generations (` + generationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		gen.ID, nullString(gen.UserID), nullString(gen.AnonymousID), nullString(gen.StyleID),
		gen.StyleName, gen.Prompt, gen.OriginalImageURL,
		strings.Join(gen.GeneratedImageURLs, "\n"), nullString(gen.Location),
		gen.TokensCharged, gen.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteGenerationRepository) GetByID(ctx context.Context, id string) (*models.Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generations WHERE id = ?`
	gen, err := scanGeneration(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func (r *SQLiteGenerationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generations
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *SQLiteGenerationRepository) GetByAnonymousID(ctx context.Context, anonymousID string, limit, offset int) ([]*models.Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generations
		WHERE anonymous_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.list(ctx, query, anonymousID, limit, offset)
}

func (r *SQLiteGenerationRepository) list(ctx context.Context, query string, args ...any) ([]*models.Generation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var gens []*models.Generation
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		gens = append(gens, gen)
	}

	return gens, rows.Err()
}

func (r *SQLiteGenerationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM generations WHERE id = ?`, id)
	return err
}

func (r *SQLiteGenerationRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM generations WHERE user_id = ?`, userID)
	return err
}

func scanGeneration(row rowScanner) (*models.Generation, error) {
	var gen models.Generation
	var userID, anonymousID, styleID, location sql.NullString
	var urls, createdAt string

	if err := row.Scan(&gen.ID, &userID, &anonymousID, &styleID, &gen.StyleName,
		&gen.Prompt, &gen.OriginalImageURL, &urls, &location, &gen.TokensCharged, &createdAt); err != nil {
		return nil, err
	}

	gen.UserID = userID.String
	gen.AnonymousID = anonymousID.String
	gen.StyleID = styleID.String
	gen.Location = location.String
	if urls != "" {
		gen.GeneratedImageURLs = strings.Split(urls, "\n")
	}
	gen.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &gen, nil
}
