package routes

import (
	"context"

	"github.com/editaja/editaja-api/internal/http/handlers"
)

// StyleHandlers defines the interface for the public style catalog.
type StyleHandlers interface {
	ListStyles(ctx context.Context, input *struct{}) (*handlers.ListStylesOutput, error)
}

// GenerationHandlers defines the interface for generation operations.
// The generate and upload endpoints themselves are raw multipart handlers
// registered on the router, not here.
type GenerationHandlers interface {
	ListGenerations(ctx context.Context, input *handlers.ListGenerationsInput) (*handlers.ListGenerationsOutput, error)
	DeleteGeneration(ctx context.Context, input *handlers.DeleteGenerationInput) (*handlers.DeleteGenerationOutput, error)
	DeleteAllGenerations(ctx context.Context, input *struct{}) (*handlers.DeleteAllGenerationsOutput, error)
	GetQuota(ctx context.Context, input *struct{}) (*handlers.GetQuotaOutput, error)
}

// TokenHandlers defines the interface for diamond balance operations.
type TokenHandlers interface {
	GetBalance(ctx context.Context, input *struct{}) (*handlers.GetBalanceOutput, error)
	GetHistory(ctx context.Context, input *handlers.GetHistoryInput) (*handlers.GetHistoryOutput, error)
}

// TopupHandlers defines the interface for topup purchase operations.
type TopupHandlers interface {
	ListPlans(ctx context.Context, input *struct{}) (*handlers.ListPlansOutput, error)
	CreateTopup(ctx context.Context, input *handlers.CreateTopupInput) (*handlers.CreateTopupOutput, error)
	GetTopup(ctx context.Context, input *handlers.GetTopupInput) (*handlers.GetTopupOutput, error)
	CheckTopup(ctx context.Context, input *handlers.CheckTopupInput) (*handlers.CheckTopupOutput, error)
	ListTopups(ctx context.Context, input *handlers.ListTopupsInput) (*handlers.ListTopupsOutput, error)
}

// AdminHandlers defines the interface for back-office operations.
type AdminHandlers interface {
	AdjustTokens(ctx context.Context, input *handlers.AdjustTokensInput) (*handlers.AdjustTokensOutput, error)
	SetTokens(ctx context.Context, input *handlers.SetTokensInput) (*handlers.SetTokensOutput, error)
	GetUserTokens(ctx context.Context, input *handlers.GetUserTokensInput) (*handlers.GetUserTokensOutput, error)
	ListTopups(ctx context.Context, input *handlers.AdminListTopupsInput) (*handlers.AdminListTopupsOutput, error)
	ManualSettle(ctx context.Context, input *handlers.ManualSettleInput) (*handlers.ManualSettleOutput, error)
	ListAdmins(ctx context.Context, input *struct{}) (*handlers.ListAdminsOutput, error)
	AddAdmin(ctx context.Context, input *handlers.AddAdminInput) (*handlers.AddAdminOutput, error)
	RemoveAdmin(ctx context.Context, input *handlers.RemoveAdminInput) (*handlers.RemoveAdminOutput, error)
	ListSettings(ctx context.Context, input *struct{}) (*handlers.ListSettingsOutput, error)
	SetSetting(ctx context.Context, input *handlers.SetSettingInput) (*handlers.SetSettingOutput, error)
	DeleteSetting(ctx context.Context, input *handlers.DeleteSettingInput) (*handlers.DeleteSettingOutput, error)
}

// AdminCatalogHandlers defines the interface for style and plan management.
type AdminCatalogHandlers interface {
	ListStyles(ctx context.Context, input *struct{}) (*handlers.AdminListStylesOutput, error)
	CreateStyle(ctx context.Context, input *handlers.CreateStyleInput) (*handlers.CreateStyleOutput, error)
	UpdateStyle(ctx context.Context, input *handlers.UpdateStyleInput) (*handlers.UpdateStyleOutput, error)
	DeleteStyle(ctx context.Context, input *handlers.DeleteStyleInput) (*handlers.DeleteStyleOutput, error)
	ImportStyles(ctx context.Context, input *handlers.ImportStylesInput) (*handlers.ImportStylesOutput, error)
	SetAllStyles(ctx context.Context, input *handlers.SetAllStylesInput) (*handlers.SetAllStylesOutput, error)
	ListPlans(ctx context.Context, input *struct{}) (*handlers.AdminListPlansOutput, error)
	CreatePlan(ctx context.Context, input *handlers.CreatePlanInput) (*handlers.CreatePlanOutput, error)
	UpdatePlan(ctx context.Context, input *handlers.UpdatePlanInput) (*handlers.UpdatePlanOutput, error)
	DeletePlan(ctx context.Context, input *handlers.DeletePlanInput) (*handlers.DeletePlanOutput, error)
}

// AdminAnalyticsHandlers defines the interface for analytics operations.
type AdminAnalyticsHandlers interface {
	GetOverview(ctx context.Context, input *handlers.OverviewInput) (*handlers.GetOverviewOutput, error)
	GetTrends(ctx context.Context, input *handlers.TrendsInput) (*handlers.GetTrendsOutput, error)
	GetTopStyles(ctx context.Context, input *handlers.TopStylesInput) (*handlers.GetTopStylesOutput, error)
	GetUsers(ctx context.Context, input *handlers.AnalyticsUsersInput) (*handlers.GetUsersOutput, error)
}

// Handlers aggregates all handler implementations needed for route registration.
type Handlers struct {
	// Public endpoints
	HealthCheck func(ctx context.Context, input *struct{}) (*handlers.HealthCheckOutput, error)

	// Kubernetes probes
	Livez  func(ctx context.Context, input *struct{}) (*handlers.LivezOutput, error)
	Readyz func(ctx context.Context, input *struct{}) (*handlers.ReadyzOutput, error)

	Style          StyleHandlers
	Generation     GenerationHandlers
	Token          TokenHandlers
	Topup          TopupHandlers
	Admin          AdminHandlers
	AdminCatalog   AdminCatalogHandlers
	AdminAnalytics AdminAnalyticsHandlers
}
