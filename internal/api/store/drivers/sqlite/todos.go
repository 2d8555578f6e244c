package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/todovault/todovault/internal/api/domain"
	"github.com/todovault/todovault/internal/api/store"
	"github.com/uptrace/bun"
)

type todosRepo struct {
	db bun.IDB
}

func (r *todosRepo) CreateTodo(ctx context.Context, t domain.Todo) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(&t).
		Exec(ctx)
	return mapConflict(err)
}

func (r *todosRepo) GetTodoByID(ctx context.Context, id string) (domain.Todo, error) {
	var t domain.Todo
	err := r.db.NewSelect().
		Model(&t).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return domain.Todo{}, mapNotFound(err)
	}
	return t, nil
}

func (r *todosRepo) ListTodosByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	todos := make([]domain.Todo, 0)
	err := r.db.NewSelect().
		Model(&todos).
		Where("user_id = ?", userID).
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *todosRepo) UpdateTodo(ctx context.Context, t domain.Todo) error {
	t.UpdatedAt = time.Now().UTC()

	res, err := r.db.NewUpdate().
		Model(&t).
		Column("text", "completed", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *todosRepo) DeleteTodo(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*domain.Todo)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
