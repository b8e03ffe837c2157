package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AnalyticsOverview represents aggregated overview statistics.
type AnalyticsOverview struct {
	TotalGenerations     int     `json:"total_generations"`
	UserGenerations      int     `json:"user_generations"`
	AnonymousGenerations int     `json:"anonymous_generations"`
	TokensSpent          int64   `json:"tokens_spent"`
	ActiveUsers          int     `json:"active_users"`
	TotalTopups          int     `json:"total_topups"`
	SettledTopups        int     `json:"settled_topups"`
	RevenueSettled       int64   `json:"revenue_settled"` // smallest currency unit
	DiamondsSold         int64   `json:"diamonds_sold"`
	ConversionRate       float64 `json:"conversion_rate"` // settled / created topups, percent
}

// TrendDataPoint represents a single data point in a trend chart.
type TrendDataPoint struct {
	Date            string `json:"date"`
	GenerationCount int    `json:"generation_count"`
	TokensSpent     int64  `json:"tokens_spent"`
	TopupCount      int    `json:"topup_count"`
	Revenue         int64  `json:"revenue"`
}

// StyleUsage represents per-style generation counts.
type StyleUsage struct {
	StyleID   string `json:"style_id"`
	StyleName string `json:"style_name"`
	Count     int    `json:"count"`
}

// UserSummary represents per-user analytics.
type UserSummary struct {
	UserID           string     `json:"user_id"`
	TotalGenerations int        `json:"total_generations"`
	TokensSpent      int64      `json:"tokens_spent"`
	TopupsSettled    int        `json:"topups_settled"`
	RevenueSettled   int64      `json:"revenue_settled"`
	LastActive       *time.Time `json:"last_active,omitempty"`
}

// SQLiteAnalyticsRepository implements analytics queries for SQLite.
type SQLiteAnalyticsRepository struct {
	db *sql.DB
}

// NewSQLiteAnalyticsRepository creates a new analytics repository.
func NewSQLiteAnalyticsRepository(db *sql.DB) *SQLiteAnalyticsRepository {
	return &SQLiteAnalyticsRepository{db: db}
}

// GetOverview returns aggregated statistics for the given date range.
// Dates are RFC3339 strings; endDate is exclusive.
func (r *SQLiteAnalyticsRepository) GetOverview(ctx context.Context, startDate, endDate string) (*AnalyticsOverview, error) {
	var overview AnalyticsOverview

	genQuery := `
		SELECT
			COUNT(*),
			SUM(CASE WHEN user_id IS NOT NULL THEN 1 ELSE 0 END),
			SUM(CASE WHEN anonymous_id IS NOT NULL THEN 1 ELSE 0 END),
			COALESCE(SUM(tokens_charged), 0),
			COUNT(DISTINCT user_id)
		FROM generations
		WHERE created_at >= ? AND created_at < ?
	`
	var userGens, anonGens sql.NullInt64
	err := r.db.QueryRowContext(ctx, genQuery, startDate, endDate).Scan(
		&overview.TotalGenerations, &userGens, &anonGens, &overview.TokensSpent, &overview.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation overview: %w", err)
	}
	overview.UserGenerations = int(userGens.Int64)
	overview.AnonymousGenerations = int(anonGens.Int64)

	topupQuery := `
		SELECT
			COUNT(*),
			SUM(CASE WHEN status = 'settlement' THEN 1 ELSE 0 END),
			COALESCE(SUM(CASE WHEN status = 'settlement' THEN price ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'settlement' THEN diamonds + bonus ELSE 0 END), 0)
		FROM topup_transactions
		WHERE created_at >= ? AND created_at < ?
	`
	var settled sql.NullInt64
	err = r.db.QueryRowContext(ctx, topupQuery, startDate, endDate).Scan(
		&overview.TotalTopups, &settled, &overview.RevenueSettled, &overview.DiamondsSold)
	if err != nil {
		return nil, fmt.Errorf("failed to get topup overview: %w", err)
	}
	overview.SettledTopups = int(settled.Int64)

	if overview.TotalTopups > 0 {
		overview.ConversionRate = float64(overview.SettledTopups) / float64(overview.TotalTopups) * 100
	}

	return &overview, nil
}

// GetTrends returns per-day aggregates for the given date range.
func (r *SQLiteAnalyticsRepository) GetTrends(ctx context.Context, startDate, endDate string) ([]*TrendDataPoint, error) {
	query := `
		SELECT date, SUM(gen_count), SUM(tokens), SUM(topup_count), SUM(revenue) FROM (
			SELECT substr(created_at, 1, 10) as date,
				COUNT(*) as gen_count,
				COALESCE(SUM(tokens_charged), 0) as tokens,
				0 as topup_count, 0 as revenue
			FROM generations
			WHERE created_at >= ? AND created_at < ?
			GROUP BY date
			UNION ALL
			SELECT substr(created_at, 1, 10) as date,
				0, 0,
				COUNT(*) as topup_count,
				COALESCE(SUM(CASE WHEN status = 'settlement' THEN price ELSE 0 END), 0) as revenue
			FROM topup_transactions
			WHERE created_at >= ? AND created_at < ?
			GROUP BY date
		)
		GROUP BY date
		ORDER BY date
	`

	rows, err := r.db.QueryContext(ctx, query, startDate, endDate, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []*TrendDataPoint
	for rows.Next() {
		var p TrendDataPoint
		if err := rows.Scan(&p.Date, &p.GenerationCount, &p.TokensSpent, &p.TopupCount, &p.Revenue); err != nil {
			return nil, err
		}
		points = append(points, &p)
	}

	return points, rows.Err()
}

// GetTopStyles returns the most used styles in the date range.
func (r *SQLiteAnalyticsRepository) GetTopStyles(ctx context.Context, startDate, endDate string, limit int) ([]*StyleUsage, error) {
	query := `
		SELECT COALESCE(style_id, ''), style_name, COUNT(*) as cnt
		FROM generations
		WHERE created_at >= ? AND created_at < ?
		GROUP BY style_id, style_name
		ORDER BY cnt DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, startDate, endDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top styles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var usage []*StyleUsage
	for rows.Next() {
		var u StyleUsage
		if err := rows.Scan(&u.StyleID, &u.StyleName, &u.Count); err != nil {
			return nil, err
		}
		usage = append(usage, &u)
	}

	return usage, rows.Err()
}

// GetUserSummaries returns per-user aggregates ordered by generation count.
func (r *SQLiteAnalyticsRepository) GetUserSummaries(ctx context.Context, startDate, endDate string, limit, offset int) ([]*UserSummary, error) {
	query := `
		SELECT g.user_id,
			COUNT(*) as gen_count,
			COALESCE(SUM(g.tokens_charged), 0),
			MAX(g.created_at),
			(SELECT COUNT(*) FROM topup_transactions t
				WHERE t.user_id = g.user_id AND t.status = 'settlement'
				AND t.created_at >= ? AND t.created_at < ?),
			(SELECT COALESCE(SUM(price), 0) FROM topup_transactions t
				WHERE t.user_id = g.user_id AND t.status = 'settlement'
				AND t.created_at >= ? AND t.created_at < ?)
		FROM generations g
		WHERE g.user_id IS NOT NULL AND g.created_at >= ? AND g.created_at < ?
		GROUP BY g.user_id
		ORDER BY gen_count DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query,
		startDate, endDate, startDate, endDate, startDate, endDate, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query user summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*UserSummary
	for rows.Next() {
		var u UserSummary
		var lastActive sql.NullString
		if err := rows.Scan(&u.UserID, &u.TotalGenerations, &u.TokensSpent, &lastActive,
			&u.TopupsSettled, &u.RevenueSettled); err != nil {
			return nil, err
		}
		if lastActive.Valid {
			t, _ := time.Parse(time.RFC3339, lastActive.String)
			u.LastActive = &t
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}
