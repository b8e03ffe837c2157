// Package routes provides shared route registration for the editAja API.
// This allows both the main server and the OpenAPI generator to use
// the same route definitions, ensuring the spec is always in sync.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/editaja/editaja-api/internal/http/mw"
	"github.com/editaja/editaja-api/internal/version"
)

// NewHumaConfig creates the shared Huma configuration for the API.
// This includes API metadata, security schemes, and tag definitions.
func NewHumaConfig(baseURL string) huma.Config {
	cfg := huma.DefaultConfig("editAja API", version.Get().Short())
	cfg.Info.Description = "AI photo styling API. Upload a photo, pick a style, get back a set of generated images. Diamonds are the prepaid credit spent per generation."

	// Disable $schema field in responses - it conflicts with "schema" field in SDK code generators
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	// Add security scheme for Bearer auth
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		mw.SecurityScheme: {
			Type:        "http",
			Scheme:      "bearer",
			Description: "Session token authentication. Include the session JWT in the Authorization header as `Bearer <token>`.",
		},
	}

	// Define OpenAPI tags with display names for documentation
	cfg.Tags = []*huma.Tag{
		{Name: "Styles", Description: "Public style catalog", Extensions: map[string]any{"x-displayName": "Styles"}},
		{Name: "Generations", Description: "Photo generation and history", Extensions: map[string]any{"x-displayName": "Generations"}},
		{Name: "Tokens", Description: "Diamond balance and transaction ledger", Extensions: map[string]any{"x-displayName": "Tokens"}},
		{Name: "Topups", Description: "Diamond topup purchases via Midtrans", Extensions: map[string]any{"x-displayName": "Topups"}},
		{Name: "Admin", Description: "Back-office user, topup, and settings management", Extensions: map[string]any{"x-displayName": "Admin"}},
		{Name: "Admin Catalog", Description: "Style and plan catalog management", Extensions: map[string]any{"x-displayName": "Admin Catalog"}},
		{Name: "Admin Analytics", Description: "Usage and revenue analytics", Extensions: map[string]any{"x-displayName": "Admin Analytics"}},
		{Name: "Health", Description: "System health and status", Extensions: map[string]any{"x-displayName": "Health"}},
	}

	return cfg
}
