// Package auth validates the HS256 access tokens issued by the external
// identity service. The subject carries the user id and the roles claim
// carries the caller's role ids for the permission model.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager handles JWT access token generation and validation.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
	}
}

// accessClaims extends standard JWT claims with the caller's role ids.
type accessClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// GenerateAccessToken creates a signed HS256 JWT with the user id as subject
// and the role ids as a custom claim. Used by tests and local tooling; in
// production tokens come from the identity service.
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID, roleIDs []uuid.UUID) (string, error) {
	now := time.Now()
	roles := make([]string, len(roleIDs))
	for i, id := range roleIDs {
		roles[i] = id.String()
	}

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccessToken parses and validates a JWT access token.
// Returns the user id and role ids if valid.
func (m *JWTManager) ValidateAccessToken(tokenString string) (uuid.UUID, []uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, nil, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return uuid.Nil, nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != m.issuer {
		return uuid.Nil, nil, fmt.Errorf("invalid issuer: expected %s, got %s", m.issuer, claims.Issuer)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid subject UUID: %w", err)
	}

	roleIDs := make([]uuid.UUID, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roleID, err := uuid.Parse(r)
		if err != nil {
			return uuid.Nil, nil, fmt.Errorf("invalid role id %q: %w", r, err)
		}
		roleIDs = append(roleIDs, roleID)
	}

	return userID, roleIDs, nil
}
