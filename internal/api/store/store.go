// Package store defines the data access contracts implemented by concrete
// drivers (sqlite today). Services depend only on these interfaces.
package store

import (
	"context"
	"errors"

	"github.com/todovault/todovault/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Tx groups the sub-repositories. Both the root store and a transaction-scoped
// store satisfy it, so multi-step operations can run against either.
type Tx interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Todos() Todos
}

// Store is the root data access interface.
type Store interface {
	Tx

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

type Users interface {
	// CreateUser inserts a new user (id provided by the app via ULID).
	// A duplicate email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and registration uniqueness checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type RefreshTokens interface {
	// UpsertRefreshToken creates or overwrites the single refresh token row
	// for userID. This is the rotation point: whatever token was stored
	// before no longer matches and will be rejected on refresh.
	UpsertRefreshToken(ctx context.Context, userID, token string) error

	// GetRefreshTokenByValue looks a token up by exact string match.
	GetRefreshTokenByValue(ctx context.Context, token string) (domain.RefreshToken, error)
}

type Todos interface {
	// CreateTodo inserts a new todo (id provided by the app via ULID).
	CreateTodo(ctx context.Context, t domain.Todo) error

	// GetTodoByID returns a todo by id.
	GetTodoByID(ctx context.Context, id string) (domain.Todo, error)

	// ListTodosByUser returns all todos owned by userID, newest first.
	ListTodosByUser(ctx context.Context, userID string) ([]domain.Todo, error)

	// UpdateTodo persists text/completed changes and bumps updated_at.
	UpdateTodo(ctx context.Context, t domain.Todo) error

	// DeleteTodo removes a todo by id.
	DeleteTodo(ctx context.Context, id string) error
}
