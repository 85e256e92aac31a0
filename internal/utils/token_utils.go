package utils

import (
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the bearer token claims. Subject carries the user id.
type IdentityClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity converts the claims into the caller identity.
func (c *IdentityClaims) Identity() *domain.Identity {
	return &domain.Identity{ID: c.Subject, Email: c.Email, Name: c.Name, Role: c.Role}
}

// GenerateJWT generates a new JWT token for the given identity.
func GenerateJWT(identity domain.Identity, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseIdentityToken parses a JWT token string, validates its signature and standard claims.
// A non-empty issuer must match the token's iss claim.
// It returns the claims if the token is valid, or an error otherwise.
func ParseIdentityToken(tokenString string, secretKey string, issuer string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err // expired, not valid yet, bad signature...
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	return claims, nil
}
