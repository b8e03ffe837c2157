package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/editaja/editaja-api/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the main server, or stub implementations
// for OpenAPI generation.
//
// The generate, upload, and payment webhook endpoints are raw multipart and
// form handlers mounted directly on the router, so they do not appear here.
func Register(api huma.API, h *Handlers) {
	// =========================================================================
	// Public Routes (no auth required)
	// =========================================================================

	mw.PublicGet(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithOperationID("healthCheck"))

	mw.PublicGet(api, "/api/v1/styles", h.Style.ListStyles,
		mw.WithTags("Styles"),
		mw.WithSummary("List active styles"),
		mw.WithDescription("Returns the publishable style catalog. Prompts are never exposed here."),
		mw.WithOperationID("listStyles"))

	mw.PublicGet(api, "/api/v1/topups/plans", h.Topup.ListPlans,
		mw.WithTags("Topups"),
		mw.WithSummary("List topup plans"),
		mw.WithOperationID("listTopupPlans"))

	// Kubernetes probes (hidden from docs - internal use only)
	mw.HiddenGet(api, "/healthz", h.Livez)
	mw.HiddenGet(api, "/readyz", h.Readyz)

	// =========================================================================
	// Caller Routes (bearer auth, or anonymous device ID where noted)
	// =========================================================================

	mw.ProtectedGet(api, "/api/v1/quota", h.Generation.GetQuota,
		mw.WithTags("Generations"),
		mw.WithSummary("Get remaining quota"),
		mw.WithDescription("Signed-in callers see their diamond balance. Anonymous callers with an X-Anonymous-Id header see their remaining free generations for today."),
		mw.WithOperationID("getQuota"))

	mw.ProtectedGet(api, "/api/v1/generations", h.Generation.ListGenerations,
		mw.WithTags("Generations"),
		mw.WithSummary("List generation history"),
		mw.WithDescription("Also accepts an anonymous X-Anonymous-Id header in place of a bearer token."),
		mw.WithOperationID("listGenerations"))
	mw.ProtectedDelete(api, "/api/v1/generations/{id}", h.Generation.DeleteGeneration,
		mw.WithTags("Generations"),
		mw.WithSummary("Delete a generation"),
		mw.WithOperationID("deleteGeneration"))
	mw.ProtectedDelete(api, "/api/v1/generations", h.Generation.DeleteAllGenerations,
		mw.WithTags("Generations"),
		mw.WithSummary("Delete all generations"),
		mw.WithOperationID("deleteAllGenerations"))

	// --- Tokens ---
	mw.ProtectedGet(api, "/api/v1/tokens/balance", h.Token.GetBalance,
		mw.WithTags("Tokens"),
		mw.WithSummary("Get diamond balance"),
		mw.WithOperationID("getTokenBalance"))
	mw.ProtectedGet(api, "/api/v1/tokens/history", h.Token.GetHistory,
		mw.WithTags("Tokens"),
		mw.WithSummary("List token transactions"),
		mw.WithOperationID("getTokenHistory"))

	// --- Topups ---
	mw.ProtectedPost(api, "/api/v1/topups", h.Topup.CreateTopup,
		mw.WithTags("Topups"),
		mw.WithSummary("Create a topup"),
		mw.WithDescription("Creates a pending topup and returns the Midtrans Snap token for the payment popup."),
		mw.WithOperationID("createTopup"))
	mw.ProtectedGet(api, "/api/v1/topups", h.Topup.ListTopups,
		mw.WithTags("Topups"),
		mw.WithSummary("List own topups"),
		mw.WithOperationID("listTopups"))
	mw.ProtectedGet(api, "/api/v1/topups/{orderId}", h.Topup.GetTopup,
		mw.WithTags("Topups"),
		mw.WithSummary("Get a topup"),
		mw.WithOperationID("getTopup"))
	mw.ProtectedPost(api, "/api/v1/topups/{orderId}/check", h.Topup.CheckTopup,
		mw.WithTags("Topups"),
		mw.WithSummary("Re-check topup status"),
		mw.WithDescription("Queries the gateway directly. Settles the topup if the webhook was missed."),
		mw.WithOperationID("checkTopup"))

	// =========================================================================
	// Admin Routes (bearer auth + admin allowlist)
	// =========================================================================

	// --- Users and balances ---
	mw.ProtectedGet(api, "/api/v1/admin/users/{userId}/tokens", h.Admin.GetUserTokens,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("Get a user's balance and ledger"),
		mw.WithOperationID("adminGetUserTokens"))
	mw.ProtectedPost(api, "/api/v1/admin/users/{userId}/tokens/adjust", h.Admin.AdjustTokens,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("Adjust a user's balance"),
		mw.WithDescription("Applies a signed delta to the balance and records it in the ledger."),
		mw.WithOperationID("adminAdjustTokens"))
	mw.ProtectedPut(api, "/api/v1/admin/users/{userId}/tokens", h.Admin.SetTokens,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("Overwrite a user's balance"),
		mw.WithOperationID("adminSetTokens"))

	// --- Topups ---
	mw.ProtectedGet(api, "/api/v1/admin/topups", h.Admin.ListTopups,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("List all topups"),
		mw.WithOperationID("adminListTopups"))
	mw.ProtectedPost(api, "/api/v1/admin/topups/{orderId}/settle", h.Admin.ManualSettle,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("Manually settle a topup"),
		mw.WithDescription("Verifies the status with the gateway before crediting. For webhook outages."),
		mw.WithOperationID("adminSettleTopup"))

	// --- Admin allowlist ---
	mw.ProtectedGet(api, "/api/v1/admin/admins", h.Admin.ListAdmins,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("List admins"),
		mw.WithOperationID("adminListAdmins"))
	mw.ProtectedPost(api, "/api/v1/admin/admins", h.Admin.AddAdmin,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("Add an admin"),
		mw.WithOperationID("adminAddAdmin"))
	mw.ProtectedDelete(api, "/api/v1/admin/admins/{userId}", h.Admin.RemoveAdmin,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("Remove an admin"),
		mw.WithOperationID("adminRemoveAdmin"))

	// --- Runtime settings ---
	mw.ProtectedGet(api, "/api/v1/admin/settings", h.Admin.ListSettings,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("List runtime settings"),
		mw.WithDescription("Secret values are masked in the response."),
		mw.WithOperationID("adminListSettings"))
	mw.ProtectedPut(api, "/api/v1/admin/settings/{key}", h.Admin.SetSetting,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("Set a runtime setting"),
		mw.WithOperationID("adminSetSetting"))
	mw.ProtectedDelete(api, "/api/v1/admin/settings/{key}", h.Admin.DeleteSetting,
		mw.WithAdmin(),
		mw.WithTags("Admin"),
		mw.WithSummary("Delete a runtime setting"),
		mw.WithOperationID("adminDeleteSetting"))

	// --- Style catalog ---
	mw.ProtectedGet(api, "/api/v1/admin/styles", h.AdminCatalog.ListStyles,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("List all styles"),
		mw.WithDescription("Includes inactive styles and prompts."),
		mw.WithOperationID("adminListStyles"))
	mw.ProtectedPost(api, "/api/v1/admin/styles", h.AdminCatalog.CreateStyle,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("Create a style"),
		mw.WithOperationID("adminCreateStyle"))
	mw.ProtectedPut(api, "/api/v1/admin/styles/{id}", h.AdminCatalog.UpdateStyle,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("Update a style"),
		mw.WithOperationID("adminUpdateStyle"))
	mw.ProtectedDelete(api, "/api/v1/admin/styles/{id}", h.AdminCatalog.DeleteStyle,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("Delete a style"),
		mw.WithOperationID("adminDeleteStyle"))
	mw.ProtectedPost(api, "/api/v1/admin/styles/import", h.AdminCatalog.ImportStyles,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("Bulk import styles"),
		mw.WithDescription("Skips styles whose ID already exists."),
		mw.WithOperationID("adminImportStyles"))
	mw.ProtectedPost(api, "/api/v1/admin/styles/set-all", h.AdminCatalog.SetAllStyles,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("Activate or deactivate styles in bulk"),
		mw.WithDescription("Flips the given style IDs, or with no IDs the whole catalog."),
		mw.WithOperationID("adminSetAllStyles"))

	// --- Topup plans ---
	mw.ProtectedGet(api, "/api/v1/admin/plans", h.AdminCatalog.ListPlans,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("List all plans"),
		mw.WithOperationID("adminListPlans"))
	mw.ProtectedPost(api, "/api/v1/admin/plans", h.AdminCatalog.CreatePlan,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("Create a plan"),
		mw.WithOperationID("adminCreatePlan"))
	mw.ProtectedPut(api, "/api/v1/admin/plans/{id}", h.AdminCatalog.UpdatePlan,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("Update a plan"),
		mw.WithOperationID("adminUpdatePlan"))
	mw.ProtectedDelete(api, "/api/v1/admin/plans/{id}", h.AdminCatalog.DeletePlan,
		mw.WithAdmin(),
		mw.WithTags("Admin Catalog"),
		mw.WithSummary("Delete a plan"),
		mw.WithOperationID("adminDeletePlan"))

	// --- Analytics ---
	mw.ProtectedGet(api, "/api/v1/admin/analytics/overview", h.AdminAnalytics.GetOverview,
		mw.WithAdmin(),
		mw.WithTags("Admin Analytics"),
		mw.WithSummary("Get overview metrics"),
		mw.WithOperationID("adminAnalyticsOverview"))
	mw.ProtectedGet(api, "/api/v1/admin/analytics/trends", h.AdminAnalytics.GetTrends,
		mw.WithAdmin(),
		mw.WithTags("Admin Analytics"),
		mw.WithSummary("Get daily trends"),
		mw.WithOperationID("adminAnalyticsTrends"))
	mw.ProtectedGet(api, "/api/v1/admin/analytics/top-styles", h.AdminAnalytics.GetTopStyles,
		mw.WithAdmin(),
		mw.WithTags("Admin Analytics"),
		mw.WithSummary("Get top styles by usage"),
		mw.WithOperationID("adminAnalyticsTopStyles"))
	mw.ProtectedGet(api, "/api/v1/admin/analytics/users", h.AdminAnalytics.GetUsers,
		mw.WithAdmin(),
		mw.WithTags("Admin Analytics"),
		mw.WithSummary("Get per-user summaries"),
		mw.WithOperationID("adminAnalyticsUsers"))
}
