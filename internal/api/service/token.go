package service

import (
	"time"

	"github.com/todovault/todovault/internal/api/domain"
	"github.com/todovault/todovault/pkg/jwtx"
)

// TokenService mints and verifies the access/refresh token pair. The two
// token kinds are signed with independent secrets so an access token can
// never be replayed as a refresh token or vice versa.
type TokenService struct {
	access  *jwtx.HS256
	refresh *jwtx.HS256

	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string

	// Zero values fall back to the package defaults.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	access, err := jwtx.NewHS256(cfg.AccessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := jwtx.NewHS256(cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}

	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	return &TokenService{
		access:     access,
		refresh:    refresh,
		issuer:     cfg.Issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssuePair signs a fresh access/refresh pair for the given user. Both tokens
// carry the same identity claims; only the TTL and signing secret differ.
func (s *TokenService) IssuePair(u domain.User) (domain.TokenPair, error) {
	now := time.Now()

	accessClaims := jwtx.NewClaims(u.ID, u.Email, u.Name, s.issuer, s.accessTTL, now)
	accessToken, err := s.access.Sign(accessClaims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refreshClaims := jwtx.NewClaims(u.ID, u.Email, u.Name, s.issuer, s.refreshTTL, now)
	refreshToken, err := s.refresh.Sign(refreshClaims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ReissueAccess signs a fresh access token from already verified claims.
// No store access and no rotation: the holder's refresh token stays valid.
func (s *TokenService) ReissueAccess(c jwtx.Claims) (string, error) {
	claims := jwtx.NewClaims(c.Subject, c.Email, c.Name, s.issuer, s.accessTTL, time.Now())
	return s.access.Sign(claims)
}

// VerifyRefresh validates a refresh token's signature and expiry and returns
// its claims. Storage-level checks (rotation) are the caller's concern.
func (s *TokenService) VerifyRefresh(token string) (jwtx.Claims, error) {
	return s.refresh.Verify(token)
}

// AccessVerifier exposes the access-token verifier for the HTTP middleware.
func (s *TokenService) AccessVerifier() jwtx.Verifier {
	return s.access
}
