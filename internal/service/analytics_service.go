package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/editaja/editaja-api/internal/repository"
)

// AnalyticsService produces back-office dashboards. Date ranges are
// resolved here so handlers deal only in day counts.
type AnalyticsService struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(repos *repository.Repositories, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{repos: repos, logger: logger}
}

// rangeFor converts a trailing day count into RFC3339 bounds. endDate
// is exclusive and sits slightly in the future to include rows written
// this second.
func rangeFor(days int) (string, string) {
	if days <= 0 || days > 365 {
		days = 30
	}
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -days)
	return start.Format(time.RFC3339), now.Add(time.Minute).Format(time.RFC3339)
}

// Overview returns aggregate statistics for the trailing day count.
func (s *AnalyticsService) Overview(ctx context.Context, days int) (*repository.AnalyticsOverview, error) {
	start, end := rangeFor(days)
	overview, err := s.repos.Analytics.GetOverview(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics overview: %w", err)
	}
	return overview, nil
}

// Trends returns per-day generation and revenue series.
func (s *AnalyticsService) Trends(ctx context.Context, days int) ([]*repository.TrendDataPoint, error) {
	start, end := rangeFor(days)
	trends, err := s.repos.Analytics.GetTrends(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics trends: %w", err)
	}
	return trends, nil
}

// TopStyles returns the most used styles in the window.
func (s *AnalyticsService) TopStyles(ctx context.Context, days, limit int) ([]*repository.StyleUsage, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	start, end := rangeFor(days)
	styles, err := s.repos.Analytics.GetTopStyles(ctx, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top styles: %w", err)
	}
	return styles, nil
}

// UserSummaries returns per-user aggregates for the window.
func (s *AnalyticsService) UserSummaries(ctx context.Context, days, limit, offset int) ([]*repository.UserSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	start, end := rangeFor(days)
	users, err := s.repos.Analytics.GetUserSummaries(ctx, start, end, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}
	return users, nil
}
