// Package token wraps a successful SRP login into an application bearer
// token. The token is signed with the server secret and carries a
// thumbprint of the login's session key, tying each token to the exact
// authentication run that produced it.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/chattrust/internal/common"
)

// Claims includes the registered claim set plus the trust-layer fields.
type Claims struct {
	jwt.RegisteredClaims
	Username          string `json:"username"`
	SessionThumbprint string `json:"skt"`
	Nonce             string `json:"nonce"`
}

// thumbprint condenses the session key so the token never carries key
// material.
func thumbprint(sessionKey []byte) string {
	sum := sha256.Sum256(sessionKey)
	return hex.EncodeToString(sum[:])
}

// Issue signs a bearer token for username bound to sessionKey.
func Issue(username string, sessionKey, secretKey []byte, validityDuration time.Duration) (string, error) {
	if username == "" || len(sessionKey) == 0 {
		return "", common.ErrInvalidInput
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Username:          username,
		SessionThumbprint: thumbprint(sessionKey),
		Nonce:             uuid.NewString(),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Parse validates tokenString and returns its claims. Expired, malformed
// or wrongly signed tokens all fail with common.ErrInvalidToken.
func Parse(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// BoundTo reports whether the claims were issued for the given session
// key.
func (c *Claims) BoundTo(sessionKey []byte) bool {
	return c.SessionThumbprint == thumbprint(sessionKey)
}
