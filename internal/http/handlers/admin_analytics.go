package handlers

import (
	"context"
	"time"

	"github.com/editaja/editaja-api/internal/repository"
	"github.com/editaja/editaja-api/internal/service"
)

// AdminAnalyticsHandler handles back-office analytics endpoints.
type AdminAnalyticsHandler struct {
	analyticsSvc *service.AnalyticsService
}

// NewAdminAnalyticsHandler creates a new analytics handler.
func NewAdminAnalyticsHandler(analyticsSvc *service.AnalyticsService) *AdminAnalyticsHandler {
	return &AdminAnalyticsHandler{analyticsSvc: analyticsSvc}
}

// OverviewInput represents the overview request.
type OverviewInput struct {
	Days int `query:"days" default:"30" minimum:"1" maximum:"365" doc:"Reporting window in days"`
}

// GetOverviewOutput represents the overview response.
type GetOverviewOutput struct {
	Body repository.AnalyticsOverview
}

// GetOverview returns aggregate usage and revenue counters.
func (h *AdminAnalyticsHandler) GetOverview(ctx context.Context, input *OverviewInput) (*GetOverviewOutput, error) {
	overview, err := h.analyticsSvc.Overview(ctx, input.Days)
	if err != nil {
		return nil, mapServiceError(err, "failed to get overview")
	}
	return &GetOverviewOutput{Body: *overview}, nil
}

// TrendsInput represents the trends request.
type TrendsInput struct {
	Days int `query:"days" default:"30" minimum:"1" maximum:"365" doc:"Reporting window in days"`
}

// GetTrendsOutput represents the trends response.
type GetTrendsOutput struct {
	Body struct {
		Trends []repository.TrendDataPoint `json:"trends"`
	}
}

// GetTrends returns per-day generation and revenue series.
func (h *AdminAnalyticsHandler) GetTrends(ctx context.Context, input *TrendsInput) (*GetTrendsOutput, error) {
	points, err := h.analyticsSvc.Trends(ctx, input.Days)
	if err != nil {
		return nil, mapServiceError(err, "failed to get trends")
	}

	out := &GetTrendsOutput{}
	out.Body.Trends = make([]repository.TrendDataPoint, 0, len(points))
	for _, p := range points {
		out.Body.Trends = append(out.Body.Trends, *p)
	}
	return out, nil
}

// TopStylesInput represents the top styles request.
type TopStylesInput struct {
	Days  int `query:"days" default:"30" minimum:"1" maximum:"365" doc:"Reporting window in days"`
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"50" doc:"Number of styles"`
}

// GetTopStylesOutput represents the top styles response.
type GetTopStylesOutput struct {
	Body struct {
		Styles []repository.StyleUsage `json:"styles"`
	}
}

// GetTopStyles returns the most used styles in the window.
func (h *AdminAnalyticsHandler) GetTopStyles(ctx context.Context, input *TopStylesInput) (*GetTopStylesOutput, error) {
	usage, err := h.analyticsSvc.TopStyles(ctx, input.Days, input.Limit)
	if err != nil {
		return nil, mapServiceError(err, "failed to get top styles")
	}

	out := &GetTopStylesOutput{}
	out.Body.Styles = make([]repository.StyleUsage, 0, len(usage))
	for _, u := range usage {
		out.Body.Styles = append(out.Body.Styles, *u)
	}
	return out, nil
}

// AnalyticsUsersInput represents the per-user analytics request.
type AnalyticsUsersInput struct {
	Days   int `query:"days" default:"30" minimum:"1" maximum:"365" doc:"Reporting window in days"`
	Limit  int `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Page size"`
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// UserSummaryItem is one user row in the analytics response.
type UserSummaryItem struct {
	UserID           string `json:"user_id"`
	TotalGenerations int    `json:"total_generations"`
	TokensSpent      int64  `json:"tokens_spent"`
	TopupsSettled    int    `json:"topups_settled"`
	RevenueSettled   int64  `json:"revenue_settled"`
	LastActive       string `json:"last_active,omitempty"`
}

// GetUsersOutput represents the per-user analytics response.
type GetUsersOutput struct {
	Body struct {
		Users []UserSummaryItem `json:"users"`
	}
}

// GetUsers returns per-user spend and activity summaries.
func (h *AdminAnalyticsHandler) GetUsers(ctx context.Context, input *AnalyticsUsersInput) (*GetUsersOutput, error) {
	summaries, err := h.analyticsSvc.UserSummaries(ctx, input.Days, input.Limit, input.Offset)
	if err != nil {
		return nil, mapServiceError(err, "failed to get user analytics")
	}

	out := &GetUsersOutput{}
	out.Body.Users = make([]UserSummaryItem, 0, len(summaries))
	for _, s := range summaries {
		item := UserSummaryItem{
			UserID:           s.UserID,
			TotalGenerations: s.TotalGenerations,
			TokensSpent:      s.TokensSpent,
			TopupsSettled:    s.TopupsSettled,
			RevenueSettled:   s.RevenueSettled,
		}
		if s.LastActive != nil {
			item.LastActive = s.LastActive.UTC().Format(time.RFC3339)
		}
		out.Body.Users = append(out.Body.Users, item)
	}
	return out, nil
}
