package mw

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig holds configuration for per-caller rate limiting.
type RateLimitConfig struct {
	// UserRequestsPerMinute applies to authenticated users, keyed by user ID.
	// A value of 0 means unlimited.
	UserRequestsPerMinute int
	// AnonymousRequestsPerMinute applies to anonymous visitors, keyed by their
	// device ID when present and client IP otherwise.
	AnonymousRequestsPerMinute int
}

// DefaultRateLimitConfig returns the limits applied to the generation endpoints.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		UserRequestsPerMinute:      30,
		AnonymousRequestsPerMinute: 10,
	}
}

// RateLimitByCaller returns middleware that rate limits by user ID for
// authenticated requests and by anonymous device ID (or IP) otherwise.
// Must run after Auth or OptionalAuth so the claims are in context.
func RateLimitByCaller(cfg RateLimitConfig) func(http.Handler) http.Handler {
	var userLimiter *httprate.RateLimiter
	if cfg.UserRequestsPerMinute > 0 {
		userLimiter = httprate.NewRateLimiter(
			cfg.UserRequestsPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(keyByUserID),
		)
	}

	anonLimiter := httprate.NewRateLimiter(
		cfg.AnonymousRequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(keyByAnonymousID, httprate.KeyByIP),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims := GetUserClaims(r.Context()); claims != nil {
				if userLimiter == nil {
					next.ServeHTTP(w, r)
					return
				}
				userLimiter.Handler(next).ServeHTTP(w, r)
				return
			}
			anonLimiter.Handler(next).ServeHTTP(w, r)
		})
	}
}

func keyByUserID(r *http.Request) (string, error) {
	if claims := GetUserClaims(r.Context()); claims != nil {
		return "user:" + claims.UserID, nil
	}
	return "", nil
}

func keyByAnonymousID(r *http.Request) (string, error) {
	if id := GetAnonymousID(r.Context()); id != "" {
		return "anon:" + id, nil
	}
	// Fall through to the IP key func.
	return "", nil
}
