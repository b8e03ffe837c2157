package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// ErrAlreadySettled is returned when a settlement has already credited
// the user. Callers treat it as success for idempotency.
var ErrAlreadySettled = errors.New("topup already settled")

// ========================================
// Topup Repository
// ========================================

// SQLiteTopupRepository implements TopupRepository for SQLite.
type SQLiteTopupRepository struct {
	db *sql.DB
}

// NewSQLiteTopupRepository creates a new SQLite topup repository.
func NewSQLiteTopupRepository(db *sql.DB) *SQLiteTopupRepository {
	return &SQLiteTopupRepository{db: db}
}

const topupColumns = `id, user_id, package_id, diamonds, bonus, price, status, order_id, snap_token, completed_at, created_at, updated_at`

func (r *SQLiteTopupRepository) Create(ctx context.Context, topup *models.TopupTransaction) error {
	query := `INSERT INTO topup_transactions (` + topupColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var completedAt *string
	if topup.CompletedAt != nil {
		s := topup.CompletedAt.Format(time.RFC3339)
		completedAt = &s
	}
	_, err := r.db.ExecContext(ctx, query,
		topup.ID, topup.UserID, topup.PackageID, topup.Diamonds, topup.Bonus, topup.Price,
		string(topup.Status), topup.OrderID, nullString(topup.SnapToken), completedAt,
		topup.CreatedAt.Format(time.RFC3339), topup.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteTopupRepository) GetByID(ctx context.Context, id string) (*models.TopupTransaction, error) {
	query := `SELECT ` + topupColumns + ` FROM topup_transactions WHERE id = ?`
	return oneTopup(scanTopup(r.db.QueryRowContext(ctx, query, id)))
}

func (r *SQLiteTopupRepository) GetByOrderID(ctx context.Context, orderID string) (*models.TopupTransaction, error) {
	query := `SELECT ` + topupColumns + ` FROM topup_transactions WHERE order_id = ?`
	return oneTopup(scanTopup(r.db.QueryRowContext(ctx, query, orderID)))
}

func (r *SQLiteTopupRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.TopupTransaction, error) {
	query := `SELECT ` + topupColumns + ` FROM topup_transactions
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.listQuery(ctx, query, userID, limit, offset)
}

func (r *SQLiteTopupRepository) List(ctx context.Context, status models.TopupStatus, limit, offset int) ([]*models.TopupTransaction, error) {
	if status == "" {
		query := `SELECT ` + topupColumns + ` FROM topup_transactions
			ORDER BY created_at DESC LIMIT ? OFFSET ?`
		return r.listQuery(ctx, query, limit, offset)
	}
	query := `SELECT ` + topupColumns + ` FROM topup_transactions
		WHERE status = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.listQuery(ctx, query, string(status), limit, offset)
}

func (r *SQLiteTopupRepository) GetStalePending(ctx context.Context, before time.Time, limit int) ([]*models.TopupTransaction, error) {
	query := `SELECT ` + topupColumns + ` FROM topup_transactions
		WHERE status = 'pending' AND created_at < ? ORDER BY created_at LIMIT ?`
	return r.listQuery(ctx, query, before.UTC().Format(time.RFC3339), limit)
}

func (r *SQLiteTopupRepository) UpdateStatus(ctx context.Context, orderID string, status models.TopupStatus) error {
	query := `UPDATE topup_transactions SET status = ?, updated_at = ? WHERE order_id = ?`
	_, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC().Format(time.RFC3339), orderID)
	return err
}

// Settle applies a settlement exactly once. The status flip, the
// completion timestamp, the balance credit and the ledger row all
// commit in one database transaction; a crash between any of them
// rolls the whole settlement back.
func (r *SQLiteTopupRepository) Settle(ctx context.Context, orderID string, ledger *models.TokenTransaction) (*models.TopupTransaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)

	// The completed_at IS NULL guard makes replayed webhooks no-ops.
	result, err := tx.ExecContext(ctx,
		`UPDATE topup_transactions SET status = ?, completed_at = ?, updated_at = ?
			WHERE order_id = ? AND completed_at IS NULL`,
		string(models.TopupSettlement), nowStr, nowStr, orderID)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		existing, err := r.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, sql.ErrNoRows
		}
		return existing, ErrAlreadySettled
	}

	var topup models.TopupTransaction
	query := `SELECT ` + topupColumns + ` FROM topup_transactions WHERE order_id = ?`
	got, err := scanTopup(tx.QueryRowContext(ctx, query, orderID))
	if err != nil {
		return nil, err
	}
	topup = *got

	amount := topup.TotalDiamonds()
	var balanceAfter int64
	err = tx.QueryRowContext(ctx,
		`UPDATE user_tokens SET tokens = tokens + ?, updated_at = ? WHERE user_id = ? RETURNING tokens`,
		amount, nowStr, topup.UserID).Scan(&balanceAfter)
	if err == sql.ErrNoRows {
		// First credit for a user whose account row was never created.
		balanceAfter = amount
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_tokens (user_id, tokens, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			topup.UserID, amount, nowStr, nowStr); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	ledger.UserID = topup.UserID
	ledger.Type = models.TxTypeTopup
	ledger.Amount = amount
	ledger.BalanceAfter = balanceAfter
	ledger.Ref = topup.OrderID
	ledger.CreatedAt = now
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO token_transactions (id, user_id, type, amount, balance_after, ref, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ledger.ID, ledger.UserID, string(ledger.Type), ledger.Amount, ledger.BalanceAfter,
		nullString(ledger.Ref), ledger.Description, nowStr); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &topup, nil
}

func (r *SQLiteTopupRepository) listQuery(ctx context.Context, query string, args ...any) ([]*models.TopupTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var topups []*models.TopupTransaction
	for rows.Next() {
		topup, err := scanTopup(rows)
		if err != nil {
			return nil, err
		}
		topups = append(topups, topup)
	}

	return topups, rows.Err()
}

func oneTopup(topup *models.TopupTransaction, err error) (*models.TopupTransaction, error) {
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return topup, nil
}

func scanTopup(row rowScanner) (*models.TopupTransaction, error) {
	var topup models.TopupTransaction
	var status, createdAt, updatedAt string
	var snapToken, completedAt sql.NullString

	if err := row.Scan(&topup.ID, &topup.UserID, &topup.PackageID, &topup.Diamonds, &topup.Bonus,
		&topup.Price, &status, &topup.OrderID, &snapToken, &completedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	topup.Status = models.TopupStatus(status)
	topup.SnapToken = snapToken.String
	if completedAt.Valid {
		t, _ := time.Parse(time.RFC3339, completedAt.String)
		topup.CompletedAt = &t
	}
	topup.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	topup.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &topup, nil
}

// ========================================
// Topup Plan Repository
// ========================================

// SQLiteTopupPlanRepository implements TopupPlanRepository for SQLite.
type SQLiteTopupPlanRepository struct {
	db *sql.DB
}

// NewSQLiteTopupPlanRepository creates a new SQLite topup plan repository.
func NewSQLiteTopupPlanRepository(db *sql.DB) *SQLiteTopupPlanRepository {
	return &SQLiteTopupPlanRepository{db: db}
}

const planColumns = `id, name, diamonds, bonus, price, active, sort_order, created_at, updated_at`

func (r *SQLiteTopupPlanRepository) Create(ctx context.Context, plan *models.TopupPlan) error {
	query := `INSERT INTO topup_plans (` + planColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Diamonds, plan.Bonus, plan.Price, plan.Active, plan.SortOrder,
		plan.CreatedAt.Format(time.RFC3339), plan.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteTopupPlanRepository) GetByID(ctx context.Context, id string) (*models.TopupPlan, error) {
	query := `SELECT ` + planColumns + ` FROM topup_plans WHERE id = ?`
	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *SQLiteTopupPlanRepository) List(ctx context.Context, activeOnly bool) ([]*models.TopupPlan, error) {
	query := `SELECT ` + planColumns + ` FROM topup_plans`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY sort_order, price`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var plans []*models.TopupPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

func (r *SQLiteTopupPlanRepository) Update(ctx context.Context, plan *models.TopupPlan) error {
	query := `UPDATE topup_plans SET name = ?, diamonds = ?, bonus = ?, price = ?, active = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		plan.Name, plan.Diamonds, plan.Bonus, plan.Price, plan.Active, plan.SortOrder,
		plan.UpdatedAt.Format(time.RFC3339), plan.ID)
	return err
}

func (r *SQLiteTopupPlanRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM topup_plans WHERE id = ?`, id)
	return err
}

func scanPlan(row rowScanner) (*models.TopupPlan, error) {
	var plan models.TopupPlan
	var createdAt, updatedAt string

	if err := row.Scan(&plan.ID, &plan.Name, &plan.Diamonds, &plan.Bonus, &plan.Price,
		&plan.Active, &plan.SortOrder, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	plan.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	plan.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &plan, nil
}
