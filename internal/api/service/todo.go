package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/todovault/todovault/internal/api/domain"
	"github.com/todovault/todovault/internal/api/store"
	"github.com/todovault/todovault/pkg/idx"

	"golang.org/x/sync/errgroup"
)

// TodoService implements todo CRUD with an ownership guard on every
// operation: the authenticated caller id must match the todo's owner before
// any mutation runs.
type TodoService struct {
	store store.Store
}

func NewTodoService(s store.Store) *TodoService {
	return &TodoService{store: s}
}

// ListByUser returns the todos owned by userID, newest first. Callers may
// only list their own todos.
func (s *TodoService) ListByUser(ctx context.Context, callerID, userID string) ([]domain.Todo, error) {
	if callerID != userID {
		return nil, ErrForbidden
	}
	todos, err := s.store.Todos().ListTodosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, callerID, id string) (domain.Todo, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.Todo{}, ErrInvalidID
	}
	todo, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return domain.Todo{}, err
	}
	return todo, nil
}

// Create stores a new todo for the caller. The body's userId must match the
// authenticated identity.
func (s *TodoService) Create(ctx context.Context, callerID, userID, text string, completed bool) (domain.Todo, error) {
	if userID != callerID {
		return domain.Todo{}, ErrInvalidUserID
	}
	if text == "" {
		return domain.Todo{}, ErrTextRequired
	}

	todo := domain.Todo{
		ID:        idx.New().String(),
		Text:      text,
		Completed: completed,
		UserID:    callerID,
	}
	if err := s.store.Todos().CreateTodo(ctx, todo); err != nil {
		return domain.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// Update applies new values to a todo the caller owns. Both fields are
// optional; a nil field leaves the stored value untouched, so a
// completed-only toggle never clobbers the text and vice versa.
func (s *TodoService) Update(ctx context.Context, callerID, id string, text *string, completed *bool) (domain.Todo, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.Todo{}, ErrInvalidID
	}
	if text != nil && *text == "" {
		return domain.Todo{}, ErrTextRequired
	}

	todo, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return domain.Todo{}, err
	}

	if text != nil {
		todo.Text = *text
	}
	if completed != nil {
		todo.Completed = *completed
	}
	if err := s.store.Todos().UpdateTodo(ctx, todo); err != nil {
		return domain.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

// Delete removes a todo the caller owns and returns it.
func (s *TodoService) Delete(ctx context.Context, callerID, id string) (domain.Todo, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.Todo{}, ErrInvalidID
	}

	todo, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return domain.Todo{}, err
	}

	if err := s.store.Todos().DeleteTodo(ctx, todo.ID); err != nil {
		return domain.Todo{}, fmt.Errorf("delete todo: %w", err)
	}
	return todo, nil
}

// ToggleAll writes the given text/completed values onto every referenced
// todo. The batch is validated up front (non-empty, every todo exists and is
// owned by the caller) and then applied as independent concurrent updates
// with no transactional atomicity: a failure mid-batch leaves the already
// committed updates in place.
func (s *TodoService) ToggleAll(ctx context.Context, callerID string, todos []domain.Todo) ([]domain.Todo, error) {
	if len(todos) == 0 {
		return nil, ErrInvalidID
	}

	updated := make([]domain.Todo, len(todos))
	for i, t := range todos {
		stored, err := s.loadOwned(ctx, callerID, t.ID)
		if err != nil {
			return nil, err
		}
		stored.Text = t.Text
		stored.Completed = t.Completed
		updated[i] = stored
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range updated {
		g.Go(func() error {
			return s.store.Todos().UpdateTodo(gctx, t)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("toggle todos: %w", err)
	}
	return updated, nil
}

// ClearCompleted deletes every referenced todo and returns the deleted ids.
// The whole batch is rejected if any referenced todo is missing, not owned
// by the caller, or not completed; the deletes themselves run concurrently
// without a transaction.
func (s *TodoService) ClearCompleted(ctx context.Context, callerID string, todos []domain.Todo) ([]string, error) {
	if len(todos) == 0 {
		return nil, ErrInvalidID
	}

	ids := make([]string, len(todos))
	for i, t := range todos {
		stored, err := s.loadOwned(ctx, callerID, t.ID)
		if err != nil {
			return nil, err
		}
		if !stored.Completed {
			return nil, ErrNotCompleted
		}
		ids[i] = stored.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			return s.store.Todos().DeleteTodo(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("clear todos: %w", err)
	}
	return ids, nil
}

// loadOwned fetches a todo and enforces the ownership guard.
func (s *TodoService) loadOwned(ctx context.Context, callerID, id string) (domain.Todo, error) {
	todo, err := s.store.Todos().GetTodoByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Todo{}, ErrTodoNotFound
		}
		return domain.Todo{}, fmt.Errorf("load todo: %w", err)
	}
	if todo.UserID != callerID {
		return domain.Todo{}, ErrForbidden
	}
	return todo, nil
}
