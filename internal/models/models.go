// Package models defines the domain models for the application.
package models

import "time"

// ========================================
// Styles
// ========================================

// StyleStatus defines whether a style is offered to users.
type StyleStatus string

const (
	StyleActive   StyleStatus = "active"
	StyleInactive StyleStatus = "inactive"
)

// Style is a catalog entry describing one AI transformation.
// The prompt is the default sent to the generation API; users may
// override it per request.
type Style struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Prompt    string      `json:"prompt"`
	ImageURL  string      `json:"image_url"`
	Status    StyleStatus `json:"status"`
	Category  string      `json:"category,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	SortOrder int         `json:"sort_order"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// IsActive reports whether the style may be used for generation.
func (s *Style) IsActive() bool {
	return s.Status == StyleActive
}

// ========================================
// Generations
// ========================================

// Generation is the append-only history record written after a
// successful generation. One row per run; deletable by its owner or
// an admin.
type Generation struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"` // empty for anonymous runs
	AnonymousID       string    `json:"anonymous_id,omitempty"`
	StyleID           string    `json:"style_id"`
	StyleName         string    `json:"style_name"`
	Prompt            string    `json:"prompt,omitempty"`
	OriginalImageURL  string    `json:"original_image_url,omitempty"`
	GeneratedImageURLs []string `json:"generated_image_urls"`
	Location          string    `json:"location,omitempty"`
	TokensCharged     int64     `json:"tokens_charged"` // 0 for anonymous runs
	CreatedAt         time.Time `json:"created_at"`
}

// ========================================
// Anonymous usage
// ========================================

// AnonymousUsage tracks the daily free-generation counter for an
// unauthenticated browser fingerprint. The counter is reset when
// LastGeneratedDate differs from the current UTC calendar date.
type AnonymousUsage struct {
	AnonymousID          string    `json:"anonymous_id"`
	TodayGenerationCount int       `json:"today_generation_count"`
	LastGeneratedDate    string    `json:"last_generated_date"` // YYYY-MM-DD, UTC
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ========================================
// Settings
// ========================================

// Setting is a runtime-editable configuration value. Secret values
// are stored AES-GCM encrypted with IsSecret set.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	IsSecret  bool      `json:"is_secret"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known setting keys. Environment configuration provides the
// defaults; rows in the settings table override them at runtime.
const (
	SettingTokenCostPerGenerate    = "token_cost_per_generate"
	SettingMaxAnonymousGenerations = "max_anonymous_generations"
	SettingInitialTokenGrant       = "initial_token_grant"
	SettingImagenAPIKey            = "imagen_api_key"
	SettingImagenEndpoint          = "imagen_endpoint"
)

// ========================================
// Admins
// ========================================

// Admin marks a user as allowed to use the back-office endpoints.
type Admin struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	AddedBy   string    `json:"added_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
