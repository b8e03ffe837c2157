// Package constants defines request limits and timing shared across the API.
package constants

import "time"

// Request timeouts.
const (
	// DefaultRequestTimeout is the timeout for most API endpoints
	DefaultRequestTimeout = 30 * time.Second
	// GenerationRequestTimeout is the extended timeout for image generation,
	// which covers upload, the remote model call, and result re-hosting
	GenerationRequestTimeout = 5 * time.Minute
)

// Cache-Control max-age buckets.
const (
	// CacheMaxAgeShort is for rapidly changing data (health checks, etc.)
	CacheMaxAgeShort = 30 * time.Second
	// CacheMaxAgeMedium is for semi-stable data (style catalog, topup plans)
	CacheMaxAgeMedium = 5 * time.Minute
	// CacheMaxAgeLong is for stable data (hosted result images)
	CacheMaxAgeLong = 1 * time.Hour
)

// Rate limiting.
const (
	// GlobalIPRateLimitPerMinute is the fallback rate limit for unauthenticated requests
	GlobalIPRateLimitPerMinute = 100
)

// Upload limits.
const (
	// MaxUploadBytes caps the photo upload size accepted by the API
	MaxUploadBytes = 10 << 20
	// MaxWebhookBytes caps webhook notification payloads
	MaxWebhookBytes = 1 << 20
)

// AllowedImageTypes lists the content types accepted for photo uploads.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// MaxRequestBytes is the global request body cap applied at the router.
// Uploads are exempted and enforce MaxUploadBytes in the handler.
const MaxRequestBytes = 1 << 20
