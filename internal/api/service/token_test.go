package service_test

import (
	"testing"
	"time"

	"github.com/todovault/todovault/internal/api/domain"
	"github.com/todovault/todovault/pkg/idx"
	"github.com/todovault/todovault/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func TestTokenService_IssuePair(t *testing.T) {
	user := domain.User{
		ID:    idx.New().String(),
		Email: "alice@example.com",
		Name:  "Alice",
	}

	t.Run("tokens carry the user identity", func(t *testing.T) {
		tokens := newTokenService(t, 0)

		pair, err := tokens.IssuePair(user)
		require.NoError(t, err)

		claims, err := tokens.AccessVerifier().Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, user.Email, claims.Email)
		require.Equal(t, user.Name, claims.Name)

		claims, err = tokens.VerifyRefresh(pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
	})

	t.Run("back-to-back pairs are distinct", func(t *testing.T) {
		tokens := newTokenService(t, 0)

		// Same user, same second. Rotation relies on the newer refresh
		// token being a different string from the one it supersedes.
		first, err := tokens.IssuePair(user)
		require.NoError(t, err)
		second, err := tokens.IssuePair(user)
		require.NoError(t, err)

		require.NotEqual(t, first.RefreshToken, second.RefreshToken)
		require.NotEqual(t, first.AccessToken, second.AccessToken)
	})
}

func TestTokenService_ReissueAccess(t *testing.T) {
	tokens := newTokenService(t, 0)

	original := jwtx.NewClaims(idx.New().String(), "bob@example.com", "Bob", "todovault-test", time.Minute, time.Now())

	token, err := tokens.ReissueAccess(original)
	require.NoError(t, err)

	claims, err := tokens.AccessVerifier().Verify(token)
	require.NoError(t, err)
	require.Equal(t, original.Subject, claims.Subject)
	require.Equal(t, "bob@example.com", claims.Email)
	require.Equal(t, "Bob", claims.Name)
}
