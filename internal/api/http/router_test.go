package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/todovault/todovault/internal/api/domain"
	apihttp "github.com/todovault/todovault/internal/api/http"
	"github.com/todovault/todovault/internal/api/service"
	"github.com/todovault/todovault/internal/api/store/drivers/sqlite"
	"github.com/todovault/todovault/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		Issuer:        "todovault-test",
	})
	require.NoError(t, err)

	router := apihttp.NewRouter(tokens.AccessVerifier(), "test", st, testLogger())
	router.UserService = service.NewUserService(st, tokens)
	router.TokenService = tokens
	router.TodoService = service.NewTodoService(st)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func registerUser(t *testing.T, srv *httptest.Server, email string) domain.TokenPair {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/user/registration", "", map[string]string{
		"email":    email,
		"password": "s3cret",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var pair domain.TokenPair
	require.NoError(t, json.Unmarshal(body, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func errMessage(t *testing.T, body []byte) string {
	t.Helper()

	var payload struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Message
}

func TestRegistrationEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("registers and returns tokens", func(t *testing.T) {
		registerUser(t, srv, "alice@example.com")
	})

	t.Run("duplicate email", func(t *testing.T) {
		registerUser(t, srv, "bob@example.com")

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/user/registration", "", map[string]string{
			"email":    "bob@example.com",
			"password": "pw",
			"name":     "Bob",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "User with this email already exists", errMessage(t, body))
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/user/registration", "", map[string]string{
			"email": "nopassword@example.com",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Wrong email or password", errMessage(t, body))
	})
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "carol@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/user/login", "", map[string]string{
			"email":    "carol@example.com",
			"password": "s3cret",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var pair domain.TokenPair
		require.NoError(t, json.Unmarshal(body, &pair))
		require.NotEmpty(t, pair.AccessToken)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/user/login", "", map[string]string{
			"email":    "ghost@example.com",
			"password": "pw",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "User not found!", errMessage(t, body))
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/user/login", "", map[string]string{
			"email":    "carol@example.com",
			"password": "wrong",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Wrong password!", errMessage(t, body))
	})
}

func TestRefreshEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("rotates the pair", func(t *testing.T) {
		pair := registerUser(t, srv, "dave@example.com")

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/user/refresh", "", map[string]string{
			"refreshToken": pair.RefreshToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var next domain.TokenPair
		require.NoError(t, json.Unmarshal(body, &next))
		require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		// The superseded token is refused on a second use.
		resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/user/refresh", "", map[string]string{
			"refreshToken": pair.RefreshToken,
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Invalid refresh token", errMessage(t, body))
	})

	t.Run("missing token", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/user/refresh", "", map[string]string{})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "No refresh token provided", errMessage(t, body))
	})

	t.Run("never-issued token", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/user/refresh", "", map[string]string{
			"refreshToken": "bogus",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Invalid refresh token", errMessage(t, body))
	})
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t)
	pair := registerUser(t, srv, "erin@example.com")

	t.Run("valid token gets a fresh access token", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/user/auth", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		require.NotEmpty(t, payload["accessToken"])
		require.NotContains(t, payload, "refreshToken")
	})

	t.Run("auth check does not rotate the refresh token", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/user/auth", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		// The refresh token issued at registration must still be accepted.
		resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/user/refresh", "", map[string]string{
			"refreshToken": pair.RefreshToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	})

	t.Run("missing header", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/user/auth", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Not authorized", errMessage(t, body))
	})

	t.Run("token signed with the wrong secret", func(t *testing.T) {
		forged := signToken(t, "wrong-secret", "some-user", time.Minute)

		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/user/auth", forged, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Not authorized", errMessage(t, body))
	})

	t.Run("expired token", func(t *testing.T) {
		expired := signToken(t, testAccessSecret, "some-user", -time.Minute)

		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/user/auth", expired, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Not authorized", errMessage(t, body))
	})

	t.Run("preflight bypasses auth", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/user/auth", nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func signToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()

	signer, err := jwtx.NewHS256(secret)
	require.NoError(t, err)
	token, err := signer.Sign(jwtx.NewClaims(subject, "x@example.com", "X", "todovault-test", ttl, time.Now()))
	require.NoError(t, err)
	return token
}

func TestTodoEndpoints(t *testing.T) {
	srv := newTestServer(t)
	ownerPair := registerUser(t, srv, "owner@example.com")
	otherPair := registerUser(t, srv, "other@example.com")

	ownerID := subjectOf(t, ownerPair.AccessToken)

	createTodo := func(t *testing.T, text string, completed bool) domain.Todo {
		t.Helper()
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/todo/", ownerPair.AccessToken, map[string]any{
			"text":      text,
			"completed": completed,
			"userId":    ownerID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

		var todo domain.Todo
		require.NoError(t, json.Unmarshal(body, &todo))
		return todo
	}

	t.Run("create and fetch", func(t *testing.T) {
		todo := createTodo(t, "buy milk", false)

		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/todo/getOne/"+todo.ID, ownerPair.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var got domain.Todo
		require.NoError(t, json.Unmarshal(body, &got))
		require.Equal(t, "buy milk", got.Text)
	})

	t.Run("create with mismatched userId", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/todo/", otherPair.AccessToken, map[string]any{
			"text":   "sneaky",
			"userId": ownerID,
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Invalid user ID", errMessage(t, body))
	})

	t.Run("create without text", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/todo/", ownerPair.AccessToken, map[string]any{
			"userId": ownerID,
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Text is required", errMessage(t, body))
	})

	t.Run("list forbids foreign user", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/todo/"+ownerID, otherPair.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "Not authorized", errMessage(t, body))
	})

	t.Run("update and delete honour ownership", func(t *testing.T) {
		todo := createTodo(t, "protect me", false)

		resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/todo/"+todo.ID, otherPair.AccessToken, map[string]any{
			"text":      "hijacked",
			"completed": true,
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "Not authorized", errMessage(t, body))

		resp, body = doJSON(t, http.MethodDelete, srv.URL+"/api/todo/"+todo.ID, otherPair.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "Not authorized", errMessage(t, body))

		resp, body = doJSON(t, http.MethodPut, srv.URL+"/api/todo/"+todo.ID, ownerPair.AccessToken, map[string]any{
			"text":      "updated",
			"completed": true,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/todo/"+todo.ID, ownerPair.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("update with only completed keeps the text", func(t *testing.T) {
		todo := createTodo(t, "partial", false)

		resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/todo/"+todo.ID, ownerPair.AccessToken, map[string]any{
			"completed": true,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var updated domain.Todo
		require.NoError(t, json.Unmarshal(body, &updated))
		require.Equal(t, "partial", updated.Text)
		require.True(t, updated.Completed)
	})

	t.Run("getOne with malformed id", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/todo/getOne/not-a-ulid", ownerPair.AccessToken, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Invalid ID", errMessage(t, body))
	})

	t.Run("toggleAll updates the batch", func(t *testing.T) {
		a := createTodo(t, "batch a", false)
		b := createTodo(t, "batch b", false)
		a.Completed = true
		b.Completed = true

		resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/todo/toggleAll", ownerPair.AccessToken, map[string]any{
			"todos": []domain.Todo{a, b},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var updated []domain.Todo
		require.NoError(t, json.Unmarshal(body, &updated))
		require.Len(t, updated, 2)
		for _, todo := range updated {
			require.True(t, todo.Completed)
		}
	})

	t.Run("clearCompleted rejects batch with an open todo", func(t *testing.T) {
		done := createTodo(t, "done", true)
		open := createTodo(t, "open", false)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/todo/clearCompleted", ownerPair.AccessToken, map[string]any{
			"todos": []domain.Todo{done, open},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Todo is not completed", errMessage(t, body))

		// Both todos survive the rejected batch.
		for _, todo := range []domain.Todo{done, open} {
			resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/todo/getOne/"+todo.ID, ownerPair.AccessToken, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
	})

	t.Run("clearCompleted deletes completed todos", func(t *testing.T) {
		a := createTodo(t, "clear a", true)
		b := createTodo(t, "clear b", true)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/todo/clearCompleted", ownerPair.AccessToken, map[string]any{
			"todos": []domain.Todo{a, b},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var ids []string
		require.NoError(t, json.Unmarshal(body, &ids))
		require.ElementsMatch(t, []string{a.ID, b.ID}, ids)

		resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/todo/getOne/"+a.ID, ownerPair.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

// subjectOf extracts the user id baked into an access token.
func subjectOf(t *testing.T, token string) string {
	t.Helper()

	verifier, err := jwtx.NewHS256(testAccessSecret)
	require.NoError(t, err)
	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.NotEmpty(t, claims.Subject)
	return claims.Subject
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/livez", "/readyz"} {
		resp, body := doJSON(t, http.MethodGet, srv.URL+path, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var health struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(body, &health))
		require.Equal(t, "ok", health.Status)
	}
}
