// Package auth verifies access tokens issued by the identity service and guards routes
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the "role" claim
const (
	RoleLearner = 1
	RoleAdmin   = 2
)

// Identity is the authenticated caller of a request
type Identity struct {
	UserID   string
	TenantID int
	Role     int
}

// TokenVerifier handles JWT access token validation. GenerateAccessToken exists for
// tooling and tests, tokens in production are issued by the identity service.
type TokenVerifier struct {
	secret string
}

// NewTokenVerifier creates a new token verifier
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{
		secret: secret,
	}
}

// GenerateAccessToken creates an access token for the identity
func (tv *TokenVerifier) GenerateAccessToken(identity Identity, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   identity.UserID,
		"tenant_id": identity.TenantID,
		"role":      identity.Role,
		"exp":       time.Now().Add(expiry).Unix(),
		"iat":       time.Now().Unix(),
		"type":      "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tv.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the identity it carries
func (tv *TokenVerifier) ValidateAccessToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tv.secret), nil
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
	if !ok || tokenType != "access" {
		return nil, fmt.Errorf("token is not an access token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("user_id not found in token")
	}

	// JWT claims decode numbers as float64
	tenantID, ok := claims["tenant_id"].(float64)
	if !ok || tenantID <= 0 {
		return nil, fmt.Errorf("tenant_id not found in token")
	}

	role, ok := claims["role"].(float64)
	if !ok {
		return nil, fmt.Errorf("role not found in token")
	}

	return &Identity{
		UserID:   userID,
		TenantID: int(tenantID),
		Role:     int(role),
	}, nil
}
