// Package auth implements the cryptographic primitives of the service:
// HS256-signed tokens with a token-type claim, and bcrypt password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/avolkov/authgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Token type claims. A refresh token must never be accepted where an access
// token is expected, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims extends the registered claim set with the token-type marker.
// The user ID travels in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// GenerateToken signs a token of the given type for userID, valid for
// validityDuration from now.
func GenerateToken(userID, tokenType string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		TokenType: tokenType,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies signature and expiry and checks the token-type claim.
// It returns the user ID from the subject claim. Expired tokens yield
// common.ErrTokenExpired; every other failure, including a token-type
// mismatch, yields common.ErrInvalidToken.
func ParseToken(tokenString, wantType string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.TokenType != wantType || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
