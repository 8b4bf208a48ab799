package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/pkg/tokens"
)

func newTestGate(t *testing.T) (*SessionGate, *repo.MemoryRepo, *tokens.Codec) {
	t.Helper()

	users := repo.NewMemoryRepo()
	require.NoError(t, users.Create(context.Background(), &models.User{
		Username:     "alice",
		Email:        "a@x.com",
		FullName:     "Alice A",
		PasswordHash: "x",
	}))

	codec := tokens.NewCodec([]byte("test-jwt-secret"), 30*time.Minute)
	return NewSessionGate(codec, users), users, codec
}

func callGate(t *testing.T, gate *SessionGate, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := gate.RequireUser(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, reached
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestSessionGate_ValidToken(t *testing.T) {
	t.Parallel()

	gate, _, codec := newTestGate(t)
	raw, _, err := codec.Issue("alice")
	require.NoError(t, err)

	rec, reached := callGate(t, gate, "Bearer "+raw)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionGate_SetsCurrentUser(t *testing.T) {
	t.Parallel()

	gate, _, codec := newTestGate(t)
	raw, _, err := codec.Issue("alice")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := gate.RequireUser(func(c echo.Context) error {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "a@x.com", user.Email)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionGate_MissingOrMalformedHeader(t *testing.T) {
	t.Parallel()

	gate, _, _ := newTestGate(t)

	for _, header := range []string{"", "Basic abc", "Bearer", "token-without-scheme"} {
		rec, reached := callGate(t, gate, header)
		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
		assert.Equal(t, "Could not validate credentials", decodeDetail(t, rec))
	}
}

func TestSessionGate_InvalidToken(t *testing.T) {
	t.Parallel()

	gate, _, _ := newTestGate(t)

	rec, reached := callGate(t, gate, "Bearer not-a-token")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Could not validate credentials", decodeDetail(t, rec))
}

func TestSessionGate_ExpiredToken(t *testing.T) {
	t.Parallel()

	gate, _, _ := newTestGate(t)
	expired := tokens.NewCodec([]byte("test-jwt-secret"), -time.Minute)
	raw, _, err := expired.Issue("alice")
	require.NoError(t, err)

	rec, reached := callGate(t, gate, "Bearer "+raw)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// expired and invalid collapse to the same body
	assert.Equal(t, "Could not validate credentials", decodeDetail(t, rec))
}

func TestSessionGate_UnknownSubject(t *testing.T) {
	t.Parallel()

	gate, _, codec := newTestGate(t)
	raw, _, err := codec.Issue("ghost")
	require.NoError(t, err)

	rec, reached := callGate(t, gate, "Bearer "+raw)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Could not validate credentials", decodeDetail(t, rec))
}

func TestSessionGate_DisabledUser(t *testing.T) {
	t.Parallel()

	gate, users, codec := newTestGate(t)
	raw, _, err := codec.Issue("alice")
	require.NoError(t, err)

	require.NoError(t, users.SetDisabled(context.Background(), "alice", true))

	rec, reached := callGate(t, gate, "Bearer "+raw)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Inactive user", decodeDetail(t, rec))
}
