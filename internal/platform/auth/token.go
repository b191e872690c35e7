package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignToken mints an HS256 access token for the given identity. The REST auth
// layer that issues tokens lives outside this server; this helper exists for
// the dev CLI and for tests that need a valid credential.
func SignToken(secret []byte, ident Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: ident.Role,
		Name: ident.Name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
