package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notes-api/auth"
	"notes-api/db"
	"notes-api/logger"
	"notes-api/middleware"
	"notes-api/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "handlers-test-secret"

type testEnv struct {
	store  *db.Memory
	tokens *auth.Issuer
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := db.NewMemory()
	tokens := auth.NewIssuer(testSecret, 0)
	log := logger.Discard()

	h := New(store, store, tokens, log)
	r := chi.NewRouter()
	r.NotFound(middleware.UnknownEndpoint)
	h.Routes(r, middleware.NewErrorHandler(log))

	return &testEnv{store: store, tokens: tokens, router: r}
}

// seedUser stores a user with a bcrypt hash of password.
func (e *testEnv) seedUser(t *testing.T, username, name, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: username, Name: name, PasswordHash: hash}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) seedNote(t *testing.T, owner *models.User, content string, important bool) *models.Note {
	t.Helper()
	ctx := context.Background()
	n := &models.Note{Content: content, Important: important}
	if owner != nil {
		n.User = &owner.ID
	}
	require.NoError(t, e.store.CreateNote(ctx, n))
	if owner != nil {
		require.NoError(t, e.store.AppendNote(ctx, owner.ID, n.ID))
	}
	return n
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) noteCount(t *testing.T) int {
	t.Helper()
	notes, err := e.store.ListNotes(context.Background())
	require.NoError(t, err)
	return len(notes)
}

func (e *testEnv) userCount(t *testing.T) int {
	t.Helper()
	users, err := e.store.ListUsers(context.Background())
	require.NoError(t, err)
	return len(users)
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}
