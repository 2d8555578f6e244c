package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// TokenPair is what the credential endpoints return: a short-lived access
// token and a longer-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken is the persisted refresh token record. One row per user:
// issuing a new token overwrites the previous one, which is what makes
// rotation effective (a superseded token no longer matches the stored value).
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	UserID    string    `bun:"user_id,pk"`
	Token     string    `bun:"token,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
