package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"notes-api/apperr"
	"notes-api/auth"
	"notes-api/db"
	"notes-api/middleware"
	"notes-api/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type signupRequest struct {
	Username string `json:"username" validate:"required"`
	Name     string `json:"name"`
	Password string `json:"password" validate:"required,utf16min=3"`
}

var errInvalidCredentials = apperr.Unauthorized("invalid username or password")

// Login answers an unknown user and a wrong password the same way.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	user, err := h.Users.FindUserByUsername(r.Context(), req.Username)
	if errors.Is(err, db.ErrNotFound) {
		return errInvalidCredentials
	}
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return errInvalidCredentials
	}

	token, err := h.Tokens.Issue(user.ID.Hex(), user.Username)
	if err != nil {
		return err
	}

	h.Log.WithField("username", user.Username).Info("user logged in")
	middleware.WriteJSON(w, http.StatusOK, loginResponse{Token: token, Username: user.Username, Name: user.Name})
	return nil
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) error {
	var req signupRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := h.Users.CreateUser(r.Context(), user); err != nil {
		return err
	}

	middleware.WriteJSON(w, http.StatusCreated, models.NewUserView(user, nil))
	return nil
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		return err
	}

	notes, err := h.notesOf(r.Context(), users)
	if err != nil {
		return err
	}

	out := make([]models.UserView, 0, len(users))
	for i := range users {
		out = append(out, models.NewUserView(&users[i], notes))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
	return nil
}

// notesOf loads every note referenced by users.
func (h *Handler) notesOf(ctx context.Context, users []models.User) (map[bson.ObjectID]*models.Note, error) {
	var ids []bson.ObjectID
	for _, u := range users {
		ids = append(ids, u.Notes...)
	}
	notes, err := h.Notes.FindNotesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[bson.ObjectID]*models.Note, len(notes))
	for i := range notes {
		byID[notes[i].ID] = &notes[i]
	}
	return byID, nil
}
