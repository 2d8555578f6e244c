package sqlite

import (
	"context"
	"time"

	"github.com/todovault/todovault/internal/api/domain"
	"github.com/uptrace/bun"
)

type usersRepo struct {
	db bun.IDB
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(&u).
		Exec(ctx)
	return mapConflict(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}
