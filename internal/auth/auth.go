// Package auth is the session-credential boundary for login-required rooms.
// Token issuance belongs to the external auth service; this package only
// verifies what arrives with a connection attempt.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSigningAlg = errors.New("unexpected token signing algorithm")
var ErrInvalidToken = errors.New("invalid session token")

// Verifier checks a session credential and returns the verified username.
type Verifier interface {
	Verify(token string) (string, error)
}

type sessionClaims struct {
	Username string `json:"username"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 session tokens minted by the auth service.
type JWTVerifier struct {
	secretKey []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secretKey: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningAlg
		}
		return v.secretKey, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || !claims.Verified {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}

// Mint signs a session token; only tests and local tooling need it here.
func (v *JWTVerifier) Mint(username string, verified bool, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		Username: username,
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secretKey)
}
