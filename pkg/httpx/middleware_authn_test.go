package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/todovault/todovault/pkg/httpx"
	"github.com/todovault/todovault/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	codec, err := jwtx.NewHS256("test-secret")
	require.NoError(t, err)

	var gotUserID string
	var gotClaims jwtx.Claims
	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID = httpx.UserIDFromContext(r.Context())
			gotClaims, _ = httpx.ClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
		httpx.AuthnMiddleware(codec),
	)

	t.Run("attaches identity to context", func(t *testing.T) {
		token, err := codec.Sign(jwtx.NewClaims("user-1", "a@b.com", "Alice", "todovault", time.Minute, time.Now()))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1", gotUserID)
		require.Equal(t, "a@b.com", gotClaims.Email)
		require.Equal(t, "Alice", gotClaims.Name)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"message":"Not authorized"}`, rec.Body.String())
	})

	t.Run("malformed scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwdw==")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("pre-flight bypasses the check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
