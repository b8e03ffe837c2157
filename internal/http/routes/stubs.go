package routes

import (
	"context"

	"github.com/editaja/editaja-api/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses - these are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: stubHealthCheck,
		Livez:       stubLivez,
		Readyz:      stubReadyz,

		Style:          &stubStyleHandlers{},
		Generation:     &stubGenerationHandlers{},
		Token:          &stubTokenHandlers{},
		Topup:          &stubTopupHandlers{},
		Admin:          &stubAdminHandlers{},
		AdminCatalog:   &stubAdminCatalogHandlers{},
		AdminAnalytics: &stubAdminAnalyticsHandlers{},
	}
}

// --- Public endpoint stubs ---

func stubHealthCheck(_ context.Context, _ *struct{}) (*handlers.HealthCheckOutput, error) {
	return nil, nil
}

func stubLivez(_ context.Context, _ *struct{}) (*handlers.LivezOutput, error) {
	return nil, nil
}

func stubReadyz(_ context.Context, _ *struct{}) (*handlers.ReadyzOutput, error) {
	return nil, nil
}

// --- Style stubs ---

type stubStyleHandlers struct{}

func (s *stubStyleHandlers) ListStyles(_ context.Context, _ *struct{}) (*handlers.ListStylesOutput, error) {
	return nil, nil
}

// --- Generation stubs ---

type stubGenerationHandlers struct{}

func (s *stubGenerationHandlers) ListGenerations(_ context.Context, _ *handlers.ListGenerationsInput) (*handlers.ListGenerationsOutput, error) {
	return nil, nil
}

func (s *stubGenerationHandlers) DeleteGeneration(_ context.Context, _ *handlers.DeleteGenerationInput) (*handlers.DeleteGenerationOutput, error) {
	return nil, nil
}

func (s *stubGenerationHandlers) DeleteAllGenerations(_ context.Context, _ *struct{}) (*handlers.DeleteAllGenerationsOutput, error) {
	return nil, nil
}

func (s *stubGenerationHandlers) GetQuota(_ context.Context, _ *struct{}) (*handlers.GetQuotaOutput, error) {
	return nil, nil
}

// --- Token stubs ---

type stubTokenHandlers struct{}

func (s *stubTokenHandlers) GetBalance(_ context.Context, _ *struct{}) (*handlers.GetBalanceOutput, error) {
	return nil, nil
}

func (s *stubTokenHandlers) GetHistory(_ context.Context, _ *handlers.GetHistoryInput) (*handlers.GetHistoryOutput, error) {
	return nil, nil
}

// --- Topup stubs ---

type stubTopupHandlers struct{}

func (s *stubTopupHandlers) ListPlans(_ context.Context, _ *struct{}) (*handlers.ListPlansOutput, error) {
	return nil, nil
}

func (s *stubTopupHandlers) CreateTopup(_ context.Context, _ *handlers.CreateTopupInput) (*handlers.CreateTopupOutput, error) {
	return nil, nil
}

func (s *stubTopupHandlers) GetTopup(_ context.Context, _ *handlers.GetTopupInput) (*handlers.GetTopupOutput, error) {
	return nil, nil
}

func (s *stubTopupHandlers) CheckTopup(_ context.Context, _ *handlers.CheckTopupInput) (*handlers.CheckTopupOutput, error) {
	return nil, nil
}

func (s *stubTopupHandlers) ListTopups(_ context.Context, _ *handlers.ListTopupsInput) (*handlers.ListTopupsOutput, error) {
	return nil, nil
}

// --- Admin stubs ---

type stubAdminHandlers struct{}

func (s *stubAdminHandlers) AdjustTokens(_ context.Context, _ *handlers.AdjustTokensInput) (*handlers.AdjustTokensOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) SetTokens(_ context.Context, _ *handlers.SetTokensInput) (*handlers.SetTokensOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) GetUserTokens(_ context.Context, _ *handlers.GetUserTokensInput) (*handlers.GetUserTokensOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) ListTopups(_ context.Context, _ *handlers.AdminListTopupsInput) (*handlers.AdminListTopupsOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) ManualSettle(_ context.Context, _ *handlers.ManualSettleInput) (*handlers.ManualSettleOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) ListAdmins(_ context.Context, _ *struct{}) (*handlers.ListAdminsOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) AddAdmin(_ context.Context, _ *handlers.AddAdminInput) (*handlers.AddAdminOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) RemoveAdmin(_ context.Context, _ *handlers.RemoveAdminInput) (*handlers.RemoveAdminOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) ListSettings(_ context.Context, _ *struct{}) (*handlers.ListSettingsOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) SetSetting(_ context.Context, _ *handlers.SetSettingInput) (*handlers.SetSettingOutput, error) {
	return nil, nil
}

func (s *stubAdminHandlers) DeleteSetting(_ context.Context, _ *handlers.DeleteSettingInput) (*handlers.DeleteSettingOutput, error) {
	return nil, nil
}

// --- Admin catalog stubs ---

type stubAdminCatalogHandlers struct{}

func (s *stubAdminCatalogHandlers) ListStyles(_ context.Context, _ *struct{}) (*handlers.AdminListStylesOutput, error) {
	return nil, nil
}

func (s *stubAdminCatalogHandlers) CreateStyle(_ context.Context, _ *handlers.CreateStyleInput) (*handlers.CreateStyleOutput, error) {
	return nil, nil
}

func (s *stubAdminCatalogHandlers) UpdateStyle(_ context.Context, _ *handlers.UpdateStyleInput) (*handlers.UpdateStyleOutput, error) {
	return nil, nil
}

func (s *stubAdminCatalogHandlers) DeleteStyle(_ context.Context, _ *handlers.DeleteStyleInput) (*handlers.DeleteStyleOutput, error) {
	return nil, nil
}

func (s *stubAdminCatalogHandlers) ImportStyles(_ context.Context, _ *handlers.ImportStylesInput) (*handlers.ImportStylesOutput, error) {
	return nil, nil
}

func (s *stubAdminCatalogHandlers) SetAllStyles(_ context.Context, _ *handlers.SetAllStylesInput) (*handlers.SetAllStylesOutput, error) {
	return nil, nil
}

func (s *stubAdminCatalogHandlers) ListPlans(_ context.Context, _ *struct{}) (*handlers.AdminListPlansOutput, error) {
	return nil, nil
}

func (s *stubAdminCatalogHandlers) CreatePlan(_ context.Context, _ *handlers.CreatePlanInput) (*handlers.CreatePlanOutput, error) {
	return nil, nil
}

func (s *stubAdminCatalogHandlers) UpdatePlan(_ context.Context, _ *handlers.UpdatePlanInput) (*handlers.UpdatePlanOutput, error) {
	return nil, nil
}

func (s *stubAdminCatalogHandlers) DeletePlan(_ context.Context, _ *handlers.DeletePlanInput) (*handlers.DeletePlanOutput, error) {
	return nil, nil
}

// --- Admin analytics stubs ---

type stubAdminAnalyticsHandlers struct{}

func (s *stubAdminAnalyticsHandlers) GetOverview(_ context.Context, _ *handlers.OverviewInput) (*handlers.GetOverviewOutput, error) {
	return nil, nil
}

func (s *stubAdminAnalyticsHandlers) GetTrends(_ context.Context, _ *handlers.TrendsInput) (*handlers.GetTrendsOutput, error) {
	return nil, nil
}

func (s *stubAdminAnalyticsHandlers) GetTopStyles(_ context.Context, _ *handlers.TopStylesInput) (*handlers.GetTopStylesOutput, error) {
	return nil, nil
}

func (s *stubAdminAnalyticsHandlers) GetUsers(_ context.Context, _ *handlers.AnalyticsUsersInput) (*handlers.GetUsersOutput, error) {
	return nil, nil
}
