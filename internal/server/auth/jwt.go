// Package auth issues and verifies operator tokens (HS256 JWTs) for servers
// started with a secret key.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the operator name.
type Claims struct {
	jwt.RegisteredClaims
	Operator string
}

func GenerateToken(operator string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			Subject:   operator,
		},
		Operator: operator,
	})

	return token.SignedString(secretKey)
}

// OperatorFromToken verifies tokenString and returns the operator it was
// issued to.
func OperatorFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Operator == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Operator, nil
}
