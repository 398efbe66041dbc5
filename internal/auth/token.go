// Package auth turns dashboard access tokens into principals
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tenantdesk/mediagate/internal/models"
)

const accessTokenType = "access"

// TokenGenerator handles JWT access token generation and validation
type TokenGenerator struct {
	secret            string
	accessTokenExpiry time.Duration
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:            secret,
		accessTokenExpiry: accessExpiry,
	}
}

// GenerateAccessToken creates an access token carrying the principal's id, flags and scopes
func (tg *TokenGenerator) GenerateAccessToken(p models.Principal) (string, error) {
	apps := p.Apps
	if apps == nil {
		apps = []string{}
	}

	claims := jwt.MapClaims{
		"sub":         p.ID,
		"super_admin": p.IsSuperAdmin,
		"active":      p.IsActive,
		"apps":        apps,
		"exp":         time.Now().Add(tg.accessTokenExpiry).Unix(),
		"iat":         time.Now().Unix(),
		"type":        accessTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the principal it describes
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (*models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tg.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != accessTokenType {
		return nil, fmt.Errorf("token is not an access token")
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return nil, fmt.Errorf("subject not found in token")
	}

	principal := &models.Principal{ID: subject}
	principal.IsSuperAdmin, _ = claims["super_admin"].(bool)
	principal.IsActive, _ = claims["active"].(bool)

	// JSON arrays decode as []any
	if rawApps, ok := claims["apps"].([]any); ok {
		for _, raw := range rawApps {
			app, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("apps claim must contain strings")
			}
			principal.Apps = append(principal.Apps, app)
		}
	}

	return principal, nil
}
