// Package main is the entry point for the editaja-api server.
// Note: Sign-in, OAuth, and session issuance are handled by the auth
// provider; this server only verifies the session JWTs it mints.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/editaja/editaja-api/internal/auth"
	"github.com/editaja/editaja-api/internal/config"
	"github.com/editaja/editaja-api/internal/constants"
	"github.com/editaja/editaja-api/internal/database"
	"github.com/editaja/editaja-api/internal/http/handlers"
	"github.com/editaja/editaja-api/internal/http/mw"
	"github.com/editaja/editaja-api/internal/logging"
	"github.com/editaja/editaja-api/internal/repository"
	"github.com/editaja/editaja-api/internal/service"
	"github.com/editaja/editaja-api/internal/shutdown"
	"github.com/editaja/editaja-api/internal/version"
	"github.com/editaja/editaja-api/internal/worker"
)

func main() {
	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	// Log version info first thing
	v := version.Get()
	logger.Info("starting editaja-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Run migrations (with logging for each migration applied)
	if err := database.MigrateWithLogger(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Log current schema state
	applied, err := database.GetAppliedMigrations(db)
	if err != nil {
		logger.Warn("failed to read schema state", "error", err)
	} else if len(applied) > 0 {
		logger.Info("database schema ready",
			"schema_version", applied[len(applied)-1].Timestamp,
			"migrations_applied", len(applied),
		)
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize services
	services, err := service.NewServices(cfg, repos, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Session JWT verifier
	verifier := auth.NewVerifier(cfg.JWTSecret)

	// Start the topup reconciler to catch missed gateway webhooks
	ctx, cancel := context.WithCancel(context.Background())
	var reconciler *worker.Reconciler
	if cfg.ReconcilerEnabled {
		reconciler = worker.NewReconciler(
			repos.Topup,
			services.Topup,
			worker.Config{
				Interval: cfg.ReconcilerInterval,
				MaxAge:   cfg.ReconcilerMaxAge,
			},
			logger,
		)
		reconciler.Start(ctx)
	}

	// Idle monitor for scale-to-zero deployments (disabled unless
	// IDLE_TIMEOUT is set). Probes don't count as activity.
	idleMonitor := shutdown.NewIdleMonitor(shutdown.IdleMonitorConfig{
		Timeout:      cfg.IdleTimeout,
		Logger:       logger,
		ExcludePaths: []string{"/healthz", "/readyz"},
	})
	idleMonitor.Start()

	// Create router
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(idleMonitor.Middleware)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Request timeout middleware with different timeouts per endpoint type
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:  constants.DefaultRequestTimeout,
		Extended: constants.GenerationRequestTimeout,
		// Generation requests wait for the imagen task (upload + inference)
		ExtendedPatterns: []string{"/generate", "/upload"},
	}))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Anonymous-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Cache-Control headers per route
	router.Use(mw.Cache(mw.DefaultCacheConfig()))
	router.Use(mw.APIVersion())

	// Request size ceiling. Slack above the image cap covers the other
	// multipart form fields; JSON bodies are far below this anyway.
	router.Use(middleware.RequestSize(constants.MaxUploadBytes + (64 << 10)))

	// Global rate limit by IP (fallback for unauthenticated requests)
	// Signed-in and anonymous callers get per-caller limits on the
	// generation routes below.
	router.Use(httprate.LimitByIP(constants.GlobalIPRateLimitPerMinute, time.Minute))

	// Global concurrency throttle - prevent system overload
	router.Use(middleware.Throttle(100))

	// Create Huma API config for main API with OpenAPI docs
	humaConfig := huma.DefaultConfig("editAja API", v.Short())
	humaConfig.Info.Description = "AI photo styling API. Upload a photo, pick a style, get back a set of generated images."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		mw.SecurityScheme: {
			Type:        "http",
			Scheme:      "bearer",
			Description: "Session token authentication. Include the session JWT in the Authorization header as `Bearer <token>`.",
		},
	}

	// Main API with OpenAPI docs
	api := humachi.New(router, humaConfig)

	// Config for hidden routes (K8s probes - no docs needed)
	hiddenConfig := huma.DefaultConfig("editAja API", v.Short())
	hiddenConfig.DocsPath = ""
	hiddenConfig.OpenAPIPath = ""
	hiddenConfig.SchemasPath = ""
	hiddenAPI := humachi.New(router, hiddenConfig)

	// Config for protected routes (no separate docs - they're served by the main API)
	protectedConfig := huma.DefaultConfig("editAja API", v.Short())
	protectedConfig.Info.Description = humaConfig.Info.Description
	protectedConfig.Servers = humaConfig.Servers
	protectedConfig.DocsPath = ""
	protectedConfig.OpenAPIPath = ""
	protectedConfig.SchemasPath = ""

	// Public routes (shown in docs)
	huma.Get(api, "/api/v1/health", handlers.HealthCheck)

	styleHandler := handlers.NewStyleHandler(services.Style)
	huma.Get(api, "/api/v1/styles", styleHandler.ListStyles)

	topupHandler := handlers.NewTopupHandler(services.Topup)
	huma.Get(api, "/api/v1/topups/plans", topupHandler.ListPlans)

	// Kubernetes probes (hidden from docs - internal use only)
	huma.Get(hiddenAPI, "/healthz", handlers.Livez)
	readyzHandler := handlers.NewReadyzHandler(db)
	huma.Get(hiddenAPI, "/readyz", readyzHandler.Readyz)

	// Payment webhook (signature verified by handler, not user auth)
	if cfg.MidtransServerKey != "" {
		midtransWebhook := handlers.NewMidtransWebhookHandler(services.Topup, logger)
		router.Post("/api/v1/webhooks/midtrans", midtransWebhook.HandleNotification)
		logger.Info("midtrans webhook endpoint enabled")
	}

	// Auth provider webhook (Svix signature verified by handler)
	if cfg.AuthWebhookSecret != "" {
		authWebhook := handlers.NewAuthWebhookHandler(cfg, services.Token, services.Generation, logger)
		router.Post("/api/v1/webhooks/auth", authWebhook.HandleWebhook)
		logger.Info("auth webhook endpoint enabled")
	}

	generationHandler := handlers.NewGenerationHandler(
		services.Generation,
		services.Settings,
		services.Token,
		services.Storage,
		logger,
	)

	// Generation routes accept either a session token or an anonymous
	// device ID, with per-caller rate limits on top of the IP limit.
	router.Group(func(r chi.Router) {
		r.Use(mw.OptionalAuth(verifier, services.Admin))
		r.Use(mw.RateLimitByCaller(mw.DefaultRateLimitConfig()))

		callerAPI := humachi.New(r, protectedConfig)

		// Raw multipart handler; the photo rides along with the form fields
		r.Post("/api/v1/generate", generationHandler.Generate)

		huma.Get(callerAPI, "/api/v1/quota", generationHandler.GetQuota)
		huma.Get(callerAPI, "/api/v1/generations", generationHandler.ListGenerations)
	})

	// Protected routes (session token required)
	router.Group(func(r chi.Router) {
		r.Use(mw.Auth(verifier, services.Admin))

		protectedAPI := humachi.New(r, protectedConfig)

		// Generation management
		huma.Delete(protectedAPI, "/api/v1/generations/{id}", generationHandler.DeleteGeneration)
		huma.Delete(protectedAPI, "/api/v1/generations", generationHandler.DeleteAllGenerations)

		// Raw multipart upload (style assets require admin, checked in handler)
		r.Post("/api/v1/upload", generationHandler.Upload)

		// Token routes
		tokenHandler := handlers.NewTokenHandler(services.Token)
		huma.Get(protectedAPI, "/api/v1/tokens/balance", tokenHandler.GetBalance)
		huma.Get(protectedAPI, "/api/v1/tokens/history", tokenHandler.GetHistory)

		// Topup routes
		huma.Post(protectedAPI, "/api/v1/topups", topupHandler.CreateTopup)
		huma.Get(protectedAPI, "/api/v1/topups", topupHandler.ListTopups)
		huma.Get(protectedAPI, "/api/v1/topups/{orderId}", topupHandler.GetTopup)
		huma.Post(protectedAPI, "/api/v1/topups/{orderId}/check", topupHandler.CheckTopup)
	})

	// Admin routes (session token + admin allowlist)
	router.Group(func(r chi.Router) {
		r.Use(mw.Auth(verifier, services.Admin))
		r.Use(mw.RequireAdmin())

		adminAPI := humachi.New(r, protectedConfig)

		adminHandler := handlers.NewAdminHandler(services.Token, services.Topup, services.Admin, services.Settings)
		huma.Get(adminAPI, "/api/v1/admin/users/{userId}/tokens", adminHandler.GetUserTokens)
		huma.Post(adminAPI, "/api/v1/admin/users/{userId}/tokens/adjust", adminHandler.AdjustTokens)
		huma.Put(adminAPI, "/api/v1/admin/users/{userId}/tokens", adminHandler.SetTokens)

		huma.Get(adminAPI, "/api/v1/admin/topups", adminHandler.ListTopups)
		huma.Post(adminAPI, "/api/v1/admin/topups/{orderId}/settle", adminHandler.ManualSettle)

		huma.Get(adminAPI, "/api/v1/admin/admins", adminHandler.ListAdmins)
		huma.Post(adminAPI, "/api/v1/admin/admins", adminHandler.AddAdmin)
		huma.Delete(adminAPI, "/api/v1/admin/admins/{userId}", adminHandler.RemoveAdmin)

		huma.Get(adminAPI, "/api/v1/admin/settings", adminHandler.ListSettings)
		huma.Put(adminAPI, "/api/v1/admin/settings/{key}", adminHandler.SetSetting)
		huma.Delete(adminAPI, "/api/v1/admin/settings/{key}", adminHandler.DeleteSetting)

		adminStyleHandler := handlers.NewAdminStyleHandler(services.Style, services.Topup)
		huma.Get(adminAPI, "/api/v1/admin/styles", adminStyleHandler.ListStyles)
		huma.Post(adminAPI, "/api/v1/admin/styles", adminStyleHandler.CreateStyle)
		huma.Put(adminAPI, "/api/v1/admin/styles/{id}", adminStyleHandler.UpdateStyle)
		huma.Delete(adminAPI, "/api/v1/admin/styles/{id}", adminStyleHandler.DeleteStyle)
		huma.Post(adminAPI, "/api/v1/admin/styles/import", adminStyleHandler.ImportStyles)
		huma.Post(adminAPI, "/api/v1/admin/styles/set-all", adminStyleHandler.SetAllStyles)

		huma.Get(adminAPI, "/api/v1/admin/plans", adminStyleHandler.ListPlans)
		huma.Post(adminAPI, "/api/v1/admin/plans", adminStyleHandler.CreatePlan)
		huma.Put(adminAPI, "/api/v1/admin/plans/{id}", adminStyleHandler.UpdatePlan)
		huma.Delete(adminAPI, "/api/v1/admin/plans/{id}", adminStyleHandler.DeletePlan)

		analyticsHandler := handlers.NewAdminAnalyticsHandler(services.Analytics)
		huma.Get(adminAPI, "/api/v1/admin/analytics/overview", analyticsHandler.GetOverview)
		huma.Get(adminAPI, "/api/v1/admin/analytics/trends", analyticsHandler.GetTrends)
		huma.Get(adminAPI, "/api/v1/admin/analytics/top-styles", analyticsHandler.GetTopStyles)
		huma.Get(adminAPI, "/api/v1/admin/analytics/users", analyticsHandler.GetUsers)
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on signal or idle timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-sigChan:
			logger.Info("shutting down server")
		case <-idleMonitor.ShutdownChan():
			logger.Info("shutting down server after idle timeout")
		}

		// Stop background work first
		idleMonitor.Stop()
		cancel()
		if reconciler != nil {
			reconciler.Stop()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	// Start server
	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
