package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// ========================================
// Token Repository
// ========================================

// SQLiteTokenRepository implements TokenRepository for SQLite.
type SQLiteTokenRepository struct {
	db *sql.DB
}

// NewSQLiteTokenRepository creates a new SQLite token repository.
func NewSQLiteTokenRepository(db *sql.DB) *SQLiteTokenRepository {
	return &SQLiteTokenRepository{db: db}
}

func (r *SQLiteTokenRepository) Get(ctx context.Context, userID string) (*models.UserTokenData, error) {
	query := `SELECT user_id, tokens, created_at, updated_at FROM user_tokens WHERE user_id = ?`
	var data models.UserTokenData
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&data.UserID, &data.Tokens, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	data.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &data, nil
}

func (r *SQLiteTokenRepository) Create(ctx context.Context, data *models.UserTokenData) error {
	query := `INSERT INTO user_tokens (user_id, tokens, created_at, updated_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, data.UserID, data.Tokens,
		data.CreatedAt.Format(time.RFC3339), data.UpdatedAt.Format(time.RFC3339))
	return err
}

// DeductIfSufficient decrements the balance in a single conditional
// statement so two concurrent requests can never both spend the same
// tokens. Returns false when the balance did not cover the amount.
func (r *SQLiteTokenRepository) DeductIfSufficient(ctx context.Context, userID string, amount int64) (bool, error) {
	query := `UPDATE user_tokens SET tokens = tokens - ?, updated_at = ?
		WHERE user_id = ? AND tokens >= ?`
	result, err := r.db.ExecContext(ctx, query, amount, time.Now().UTC().Format(time.RFC3339), userID, amount)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *SQLiteTokenRepository) Credit(ctx context.Context, userID string, amount int64) error {
	query := `UPDATE user_tokens SET tokens = tokens + ?, updated_at = ? WHERE user_id = ?`
	result, err := r.db.ExecContext(ctx, query, amount, time.Now().UTC().Format(time.RFC3339), userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *SQLiteTokenRepository) Set(ctx context.Context, userID string, tokens int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `INSERT INTO user_tokens (user_id, tokens, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET tokens = excluded.tokens, updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, userID, tokens, now, now)
	return err
}

func (r *SQLiteTokenRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = ?`, userID)
	return err
}

// ========================================
// Token Transaction Repository
// ========================================

// SQLiteTokenTransactionRepository implements TokenTransactionRepository for SQLite.
type SQLiteTokenTransactionRepository struct {
	db *sql.DB
}

// NewSQLiteTokenTransactionRepository creates a new SQLite token transaction repository.
func NewSQLiteTokenTransactionRepository(db *sql.DB) *SQLiteTokenTransactionRepository {
	return &SQLiteTokenTransactionRepository{db: db}
}

func (r *SQLiteTokenTransactionRepository) Create(ctx context.Context, tx *models.TokenTransaction) error {
	query := `INSERT INTO token_transactions (id, user_id, type, amount, balance_after, ref, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, tx.ID, tx.UserID, string(tx.Type), tx.Amount, tx.BalanceAfter,
		nullString(tx.Ref), tx.Description, tx.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteTokenTransactionRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.TokenTransaction, error) {
	query := `SELECT id, user_id, type, amount, balance_after, ref, description, created_at
		FROM token_transactions WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var transactions []*models.TokenTransaction
	for rows.Next() {
		var tx models.TokenTransaction
		var txType string
		var ref sql.NullString
		var createdAt string

		if err := rows.Scan(&tx.ID, &tx.UserID, &txType, &tx.Amount, &tx.BalanceAfter, &ref, &tx.Description, &createdAt); err != nil {
			return nil, err
		}

		tx.Type = models.TokenTransactionType(txType)
		tx.Ref = ref.String
		tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}

func (r *SQLiteTokenTransactionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM token_transactions WHERE user_id = ?`, userID)
	return err
}
