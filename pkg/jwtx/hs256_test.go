package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewHS256_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewHS256("")
	require.ErrorIs(t, err, ErrMissingSecret)

}

func TestNewClaims_UniqueID(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := NewClaims("user-1", "a@b.com", "Alice", "todovault", time.Minute, now)
	b := NewClaims("user-1", "a@b.com", "Alice", "todovault", time.Minute, now)

	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID, "identical identities minted at the same instant must still differ")
}

func TestHS256_RoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := NewHS256("test-secret")
	require.NoError(t, err)

	now := time.Now()
	claims := NewClaims("user-1", "a@b.com", "Alice", "todovault", time.Minute, now)

	raw, err := codec.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	decoded, err := codec.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", decoded.Subject)
	require.Equal(t, "a@b.com", decoded.Email)
	require.Equal(t, "Alice", decoded.Name)
	require.Equal(t, "todovault", decoded.Issuer)
	require.WithinDuration(t, now.Add(time.Minute), decoded.ExpiresAt.Time, 2*time.Second)
}

func TestHS256_WrongSecret(t *testing.T) {
	t.Parallel()

	signer, err := NewHS256("secret-a")
	require.NoError(t, err)
	verifier, err := NewHS256("secret-b")
	require.NoError(t, err)

	raw, err := signer.Sign(NewClaims("user-1", "a@b.com", "Alice", "", time.Minute, time.Now()))
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestHS256_Expired(t *testing.T) {
	t.Parallel()

	codec, err := NewHS256("test-secret")
	require.NoError(t, err)

	raw, err := codec.Sign(NewClaims("user-1", "a@b.com", "Alice", "", time.Minute, time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256_Malformed(t *testing.T) {
	t.Parallel()

	codec, err := NewHS256("test-secret")
	require.NoError(t, err)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, ErrInvalid, "input %q", raw)
	}
}
