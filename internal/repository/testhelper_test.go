package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/editaja/editaja-api/internal/database/migrations"
	_ "github.com/tursodatabase/go-libsql"
)

// setupTestDB creates a temporary SQLite database for testing.
// It runs migrations and returns a database connection that will be cleaned up
// when the test completes.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A file-backed database in a per-test temp dir keeps every pooled
	// connection on the same database; a ":memory:" DSN gives each
	// connection its own empty copy.
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// setupTestRepos creates all repositories using a test database.
func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db := setupTestDB(t)
	return NewRepositories(db)
}

// InsertTestStyle is a helper to insert a test style directly.
func InsertTestStyle(t *testing.T, db *sql.DB, id, name, prompt, status string) {
	t.Helper()
	query := `
		INSERT INTO styles (id, name, prompt, status, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, strftime('%Y-%m-%dT%H:%M:%SZ','now'), strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	`
	if _, err := db.Exec(query, id, name, prompt, status); err != nil {
		t.Fatalf("failed to insert test style: %v", err)
	}
}

// InsertTestTokens is a helper to insert a test token balance.
func InsertTestTokens(t *testing.T, db *sql.DB, userID string, tokens int64) {
	t.Helper()
	query := `
		INSERT INTO user_tokens (user_id, tokens, created_at, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'), strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	`
	if _, err := db.Exec(query, userID, tokens); err != nil {
		t.Fatalf("failed to insert test tokens: %v", err)
	}
}

// InsertTestTopup is a helper to insert a test topup transaction.
func InsertTestTopup(t *testing.T, db *sql.DB, id, userID, orderID, status string, diamonds, price int64) {
	t.Helper()
	query := `
		INSERT INTO topup_transactions (id, user_id, package_id, diamonds, bonus, price, status, order_id, created_at, updated_at)
		VALUES (?, ?, 'pkg_test', ?, 0, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'), strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	`
	if _, err := db.Exec(query, id, userID, diamonds, price, status, orderID); err != nil {
		t.Fatalf("failed to insert test topup: %v", err)
	}
}

// InsertTestGeneration is a helper to insert a test generation record.
func InsertTestGeneration(t *testing.T, db *sql.DB, id, userID, styleName string, tokensCharged int64) {
	t.Helper()
	query := `
		INSERT INTO generations (id, user_id, style_name, prompt, original_image_url, generated_image_urls, tokens_charged, created_at)
		VALUES (?, ?, ?, 'test prompt', 'https://cdn.example.com/orig.jpg', 'https://cdn.example.com/gen.jpg', ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	`
	if _, err := db.Exec(query, id, userID, styleName, tokensCharged); err != nil {
		t.Fatalf("failed to insert test generation: %v", err)
	}
}

// InsertTestAdmin is a helper to insert a test admin row.
func InsertTestAdmin(t *testing.T, db *sql.DB, userID, email string) {
	t.Helper()
	query := `
		INSERT INTO admins (user_id, email, created_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	`
	if _, err := db.Exec(query, userID, email); err != nil {
		t.Fatalf("failed to insert test admin: %v", err)
	}
}
