// Package jwtx signs and verifies the HS256 tokens used for API sessions.
// Access and refresh tokens share the claim shape but are signed with
// different secrets and lifetimes.
package jwtx

import (
	"time"

	"github.com/todovault/todovault/pkg/idx"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Deliberately short; override per deployment via
// ACCESS_TOKEN_TTL / REFRESH_TOKEN_TTL.
const (
	DefaultAccessTokenTTL  = 1 * time.Minute
	DefaultRefreshTokenTTL = 5 * time.Minute
)

// Claims carried by both token kinds. Subject holds the user ID; email and
// name are denormalized so handlers can echo identity without a store lookup.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// NewClaims builds minimally-correct claims for a user identity. The jti is
// a fresh ULID so two tokens minted for the same user in the same second are
// still distinct strings; refresh rotation depends on that.
func NewClaims(subject, email, name, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.New().String(),
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Name:  name,
	}
}
