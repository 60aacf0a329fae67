// Package auth issues and verifies the signed access tokens that authenticate
// accounts to downstream consumers. Tokens are stateless HS256 JWTs; nothing
// is persisted server-side and a token becomes invalid exactly at its expiry.
package auth

import (
	"errors"
	"time"

	"github.com/authcore/authcore/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// IssueToken signs a token with subject accountID, issued now and expiring
// after ttl. The expiry time is returned alongside the compact token.
func IssueToken(accountID string, secretKey []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// VerifyToken checks the signature and expiry of tokenString and returns the
// account ID it was issued for. Failures map onto the common token errors:
// ErrTokenExpired, ErrBadSignature, ErrTokenMalformed.
func VerifyToken(tokenString string, secretKey []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", common.ErrBadSignature
		default:
			return "", common.ErrTokenMalformed
		}
	}
	if !token.Valid {
		return "", common.ErrTokenMalformed
	}

	return claims.Subject, nil
}
