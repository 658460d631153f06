package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/class-marketplace/internal/auth"
	handler "github.com/vasiliy-maslov/class-marketplace/internal/handler/http"
	"github.com/vasiliy-maslov/class-marketplace/internal/user"
)

const testSecret = "test-secret"

type fakeUsers map[uuid.UUID]*user.User

func (f fakeUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type testEnv struct {
	tokens *auth.TokenManager
	users  fakeUsers
	auth   *handler.Authenticator
	router *chi.Mux
}

func newTestEnv() *testEnv {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	users := fakeUsers{}
	return &testEnv{
		tokens: tokens,
		users:  users,
		auth:   handler.NewAuthenticator(tokens, users),
		router: chi.NewRouter(),
	}
}

func (e *testEnv) addUser(name string, isAdmin bool) *user.User {
	u := &user.User{
		ID:      uuid.Must(uuid.NewV4()),
		Name:    name,
		Email:   name + "@example.com",
		IsAdmin: isAdmin,
	}
	e.users[u.ID] = u
	return u
}

func (e *testEnv) bearer(t *testing.T, u *user.User) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(u.ID)
	require.NoError(t, err)
	return "Bearer " + token
}

// do sends body (JSON-encoded unless nil) through the router.
func (e *testEnv) do(t *testing.T, method, target string, body interface{}, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		jsonBody, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var errorResponse handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errorResponse), "Failed to decode error response body")
	return errorResponse.Message
}

func requireStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rr.Code, "unexpected status, body: %s", rr.Body.String())
}
