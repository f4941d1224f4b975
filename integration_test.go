package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notes-api/auth"
	"notes-api/db"
	"notes-api/handlers"
	"notes-api/logger"
	"notes-api/metrics"
	"notes-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type testServer struct {
	store  *db.Memory
	router http.Handler
}

func setupIntegrationTest(t *testing.T) *testServer {
	t.Helper()
	store := db.NewMemory()
	log := logger.Discard()

	root := &models.User{Username: "root", Name: "Superuser"}
	hash, err := auth.HashPassword("sekret")
	require.NoError(t, err)
	root.PasswordHash = hash
	require.NoError(t, store.CreateUser(context.Background(), root))

	h := handlers.New(store, store, auth.NewIssuer("integration-secret", 0), log)
	return &testServer{store: store, router: newRouter(h, store, metrics.New("notes"), log)}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) notes(t *testing.T) []models.NoteView {
	t.Helper()
	rr := s.do(t, http.MethodGet, "/api/notes", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var notes []models.NoteView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	return notes
}

func (s *testServer) users(t *testing.T) []models.UserView {
	t.Helper()
	rr := s.do(t, http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var users []models.UserView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	return users
}

func TestSignupLoginAndCreateNote(t *testing.T) {
	s := setupIntegrationTest(t)

	rr := s.do(t, http.MethodPost, "/api/users", map[string]string{
		"username": "mluukkai",
		"name":     "Matti Luukkainen",
		"password": "salainen",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var usernames []string
	for _, u := range s.users(t) {
		usernames = append(usernames, u.Username)
	}
	assert.Contains(t, usernames, "mluukkai")

	rr = s.do(t, http.MethodPost, "/api/login", map[string]string{"username": "mluukkai", "password": "salainen"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.Equal(t, "Matti Luukkainen", login["name"])

	before := len(s.notes(t))
	rr = s.do(t, http.MethodPost, "/api/notes", map[string]any{
		"content":   "async/await simplifies making async calls",
		"important": true,
	}, login["token"])
	require.Equal(t, http.StatusCreated, rr.Code)

	after := s.notes(t)
	require.Len(t, after, before+1)
	var contents []string
	for _, n := range after {
		contents = append(contents, n.Content)
	}
	assert.Contains(t, contents, "async/await simplifies making async calls")

	for _, u := range s.users(t) {
		if u.Username == "mluukkai" {
			require.Len(t, u.Notes, 1)
			assert.Equal(t, "async/await simplifies making async calls", u.Notes[0].Content)
		}
	}
}

func TestCreateNoteWithUserID(t *testing.T) {
	s := setupIntegrationTest(t)
	root, err := s.store.FindUserByUsername(context.Background(), "root")
	require.NoError(t, err)

	rr := s.do(t, http.MethodPost, "/api/notes", map[string]any{
		"content": "async/await simplifies making async calls",
		"userId":  root.ID.Hex(),
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.Len(t, s.notes(t), 1)
}

func TestUserInvariants(t *testing.T) {
	t.Run("Short password persists nothing", func(t *testing.T) {
		s := setupIntegrationTest(t)
		rr := s.do(t, http.MethodPost, "/api/users", map[string]string{"username": "ab", "password": "ab"}, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Len(t, s.users(t), 1)
	})

	t.Run("Duplicate username leaves count unchanged", func(t *testing.T) {
		s := setupIntegrationTest(t)
		rr := s.do(t, http.MethodPost, "/api/users", map[string]string{"username": "root", "password": "salainen"}, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "username must be unique")
		assert.Len(t, s.users(t), 1)
	})
}

func TestNoteIdentifiers(t *testing.T) {
	s := setupIntegrationTest(t)
	missing := bson.NewObjectID().Hex()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/notes/" + missing, http.StatusNotFound},
		{http.MethodGet, "/api/notes/notavalidid", http.StatusBadRequest},
		{http.MethodDelete, "/api/notes/" + missing, http.StatusNoContent},
		{http.MethodDelete, "/api/notes/notavalidid", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := s.do(t, tc.method, tc.path, nil, "")
			assert.Equal(t, tc.status, rr.Code)
			assert.Empty(t, s.notes(t))
		})
	}
}

func TestOuterRoutes(t *testing.T) {
	s := setupIntegrationTest(t)

	t.Run("Greeting", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/", nil, "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "<h1>Hello World!</h1>", rr.Body.String())
	})

	t.Run("Unknown endpoint", func(t *testing.T) {
		for _, path := range []string{"/nothing", "/api/nothing", "/api/notes/a/b"} {
			rr := s.do(t, http.MethodGet, path, nil, "")
			assert.Equal(t, http.StatusNotFound, rr.Code, path)
			assert.JSONEq(t, `{"error":"unknown endpoint"}`, rr.Body.String(), path)
		}
	})

	t.Run("Unsupported method", func(t *testing.T) {
		rr := s.do(t, http.MethodPatch, "/api/users", nil, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error":"unknown endpoint"}`, rr.Body.String())
	})

	t.Run("Health", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/healthz", nil, "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("Metrics", func(t *testing.T) {
		s.do(t, http.MethodGet, "/api/notes", nil, "")
		rr := s.do(t, http.MethodGet, "/metrics", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		body, err := io.ReadAll(rr.Body)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(body), `route="/api/notes/"`) ||
			strings.Contains(string(body), `route="/api/notes"`))
	})

	t.Run("Preflight", func(t *testing.T) {
		rr := s.do(t, http.MethodOptions, "/api/notes", nil, "")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("no reachable servers") }

func TestHealthFailure(t *testing.T) {
	log := logger.Discard()
	store := db.NewMemory()
	h := handlers.New(store, store, auth.NewIssuer("s", 0), log)
	router := newRouter(h, failingPinger{}, metrics.New("notes"), log)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
