package sqlite

import (
	"context"
	"time"

	"github.com/todovault/todovault/internal/api/domain"
	"github.com/uptrace/bun"
)

type refreshTokensRepo struct {
	db bun.IDB
}

func (r *refreshTokensRepo) UpsertRefreshToken(ctx context.Context, userID, token string) error {
	now := time.Now().UTC()
	rt := domain.RefreshToken{
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.NewInsert().
		Model(&rt).
		On("CONFLICT (user_id) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *refreshTokensRepo) GetRefreshTokenByValue(ctx context.Context, token string) (domain.RefreshToken, error) {
	var rt domain.RefreshToken
	err := r.db.NewSelect().
		Model(&rt).
		Where("token = ?", token).
		Scan(ctx)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return rt, nil
}
