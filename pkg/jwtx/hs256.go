package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// HS256 signs and verifies tokens with a single shared secret.
type HS256 struct {
	secret []byte
}

// NewHS256 returns a codec for the given secret. An empty secret is a
// configuration error.
func NewHS256(secret string) (*HS256, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &HS256{secret: []byte(secret)}, nil
}

// Sign produces a compact serialized token for claims.
func (h *HS256) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses raw, checks the HMAC signature and registered claims
// (including expiry), and returns the decoded claims.
func (h *HS256) Verify(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if !token.Valid {
		return Claims{}, ErrInvalid
	}
	return claims, nil
}
