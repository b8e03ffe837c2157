// Package mw contains HTTP middleware for the editaja-api.
package mw

import (
	"context"
	"net/http"

	"github.com/editaja/editaja-api/internal/auth"
	"github.com/editaja/editaja-api/internal/service"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserClaimsKey is the context key for user claims.
	UserClaimsKey ContextKey = "user_claims"
	// AnonymousIDKey is the context key for the anonymous visitor ID.
	AnonymousIDKey ContextKey = "anonymous_id"
)

// AnonymousIDHeader carries the browser-generated visitor ID used for
// the free daily quota.
const AnonymousIDHeader = "X-Anonymous-Id"

// UserClaims represents the authenticated caller.
type UserClaims struct {
	UserID  string
	Email   string
	Name    string
	IsAdmin bool
}

// Auth returns middleware that requires a valid session token.
func Auth(verifier *auth.Verifier, adminSvc *service.AdminService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, verifier, adminSvc)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns middleware that attaches claims when a valid
// token is present and otherwise records the anonymous visitor ID.
// Requests carrying an invalid token are still rejected; silently
// downgrading them to anonymous would mask expired sessions.
func OptionalAuth(verifier *auth.Verifier, adminSvc *service.AdminService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if header := r.Header.Get("Authorization"); header != "" {
				claims, err := authenticate(r, verifier, adminSvc)
				if err != nil {
					http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
					return
				}
				ctx = context.WithValue(ctx, UserClaimsKey, claims)
			} else if anonID := r.Header.Get(AnonymousIDHeader); anonID != "" {
				ctx = context.WithValue(ctx, AnonymousIDKey, anonID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that rejects non-admin callers. Must
// run after Auth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserClaims(r.Context())
			if claims == nil || !claims.IsAdmin {
				http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, verifier *auth.Verifier, adminSvc *service.AdminService) (*UserClaims, error) {
	token, err := auth.ExtractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	userClaims, err := verifier.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	claims := &UserClaims{
		UserID: userClaims.UserID,
		Email:  userClaims.Email,
		Name:   userClaims.Name,
	}

	// Admin status is resolved from the allowlist table rather than a
	// token claim, so revocation takes effect on the next request.
	if adminSvc != nil {
		isAdmin, err := adminSvc.IsAdmin(r.Context(), claims.UserID)
		if err == nil {
			claims.IsAdmin = isAdmin
		}
	}

	return claims, nil
}

// GetUserClaims retrieves user claims from context.
func GetUserClaims(ctx context.Context) *UserClaims {
	claims, ok := ctx.Value(UserClaimsKey).(*UserClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetAnonymousID retrieves the anonymous visitor ID from context.
func GetAnonymousID(ctx context.Context) string {
	id, ok := ctx.Value(AnonymousIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
