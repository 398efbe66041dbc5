package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tenantdesk/mediagate/internal/models"
)

// AccessTokenCookie is the cookie the dashboard stores its access token in
const AccessTokenCookie = "access_token"

// TokenValidator is an interface for turning an access token into a principal
type TokenValidator interface {
	// Method ValidateAccessToken validates a token and returns the principal it describes
	//
	// "token" parameter is the raw access token
	//
	// If the token is invalid or expired, an error is returned
	ValidateAccessToken(token string) (*models.Principal, error)
}

// Authenticate resolves the caller's principal when a token is present.
// Requests without a token continue anonymously; an invalid token is rejected.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			ctx = WithAccessToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActive rejects anonymous callers and deactivated principals.
// It must run after Authenticate.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := GetPrincipal(r.Context())
		if principal == nil {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !principal.IsActive {
			writeJSONError(w, http.StatusForbidden, "account is not active")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractToken reads the bearer token from the Authorization header or the cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// WithPrincipal stores the principal in the context
func WithPrincipal(ctx context.Context, principal *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal retrieves the principal from context, or nil for anonymous callers
func GetPrincipal(ctx context.Context) *models.Principal {
	principal, _ := ctx.Value(principalKey).(*models.Principal)
	return principal
}

// WithAccessToken stores the caller's raw access token so it can be forwarded upstream
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// GetAccessToken retrieves the caller's raw access token from context
func GetAccessToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
