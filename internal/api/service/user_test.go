package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/todovault/todovault/internal/api/service"
	"github.com/todovault/todovault/internal/api/store/drivers/sqlite"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTokenService(t *testing.T, refreshTTL time.Duration) *service.TokenService {
	t.Helper()

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "todovault-test",
		RefreshTTL:    refreshTTL,
	})
	require.NoError(t, err)
	return tokens
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues token pair", func(t *testing.T) {
		s := newTestStore(t)
		users := service.NewUserService(s, newTokenService(t, 0))

		user, pair, err := users.Register(ctx, "alice@example.com", "s3cret", "Alice")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", user.Email)
		require.Equal(t, "Alice", user.Name)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		// The refresh half must be persisted for the rotation check.
		stored, err := s.RefreshTokens().GetRefreshTokenByValue(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, stored.UserID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		s := newTestStore(t)
		users := service.NewUserService(s, newTokenService(t, 0))

		_, _, err := users.Register(ctx, "bob@example.com", "pw", "Bob")
		require.NoError(t, err)

		_, _, err = users.Register(ctx, "bob@example.com", "pw", "Bob Again")
		require.ErrorIs(t, err, service.ErrEmailTaken)
	})

	t.Run("rejects missing credentials", func(t *testing.T) {
		s := newTestStore(t)
		users := service.NewUserService(s, newTokenService(t, 0))

		_, _, err := users.Register(ctx, "", "pw", "No Email")
		require.ErrorIs(t, err, service.ErrWrongCredentials)

		_, _, err = users.Register(ctx, "x@example.com", "", "No Password")
		require.ErrorIs(t, err, service.ErrWrongCredentials)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue tokens and rotate refresh", func(t *testing.T) {
		s := newTestStore(t)
		users := service.NewUserService(s, newTokenService(t, 0))

		_, registerPair, err := users.Register(ctx, "carol@example.com", "s3cret", "Carol")
		require.NoError(t, err)

		user, loginPair, err := users.Login(ctx, "carol@example.com", "s3cret")
		require.NoError(t, err)
		require.Equal(t, "carol@example.com", user.Email)
		require.NotEmpty(t, loginPair.AccessToken)

		// Login supersedes the registration-issued refresh token.
		_, _, err = users.Refresh(ctx, registerPair.RefreshToken)
		require.ErrorIs(t, err, service.ErrRefreshNotFound)
	})

	t.Run("unknown email", func(t *testing.T) {
		s := newTestStore(t)
		users := service.NewUserService(s, newTokenService(t, 0))

		_, _, err := users.Login(ctx, "ghost@example.com", "pw")
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("wrong password issues nothing", func(t *testing.T) {
		s := newTestStore(t)
		users := service.NewUserService(s, newTokenService(t, 0))

		user, pair, err := users.Register(ctx, "dave@example.com", "right", "Dave")
		require.NoError(t, err)

		_, _, err = users.Login(ctx, "dave@example.com", "wrong")
		require.ErrorIs(t, err, service.ErrWrongPassword)

		// The stored refresh token is still the one from registration.
		stored, err := s.RefreshTokens().GetRefreshTokenByValue(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, stored.UserID)
	})
}

func TestUserService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token yields a new pair and rotates", func(t *testing.T) {
		s := newTestStore(t)
		users := service.NewUserService(s, newTokenService(t, 0))

		_, pair, err := users.Register(ctx, "erin@example.com", "pw", "Erin")
		require.NoError(t, err)

		user, next, err := users.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, "erin@example.com", user.Email)
		require.NotEmpty(t, next.AccessToken)
		require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		// The old token is rotated out even though it has not expired.
		_, _, err = users.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrRefreshNotFound)

		_, _, err = users.Refresh(ctx, next.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("never-issued token is rejected", func(t *testing.T) {
		s := newTestStore(t)
		users := service.NewUserService(s, newTokenService(t, 0))

		_, _, err := users.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, service.ErrRefreshNotFound)
	})

	t.Run("expired token is rejected as expired", func(t *testing.T) {
		s := newTestStore(t)
		users := service.NewUserService(s, newTokenService(t, time.Millisecond))

		_, pair, err := users.Register(ctx, "frank@example.com", "pw", "Frank")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		_, _, err = users.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrRefreshExpired)
	})
}
