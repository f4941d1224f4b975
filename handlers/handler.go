package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"notes-api/apperr"
	"notes-api/auth"
	"notes-api/db"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Handler serves the login, users and notes routes.
type Handler struct {
	Users    db.UserStore
	Notes    db.NoteStore
	Tokens   *auth.Issuer
	Log      *logrus.Entry
	validate *validator.Validate
}

func New(users db.UserStore, notes db.NoteStore, tokens *auth.Issuer, log *logrus.Entry) *Handler {
	return &Handler{
		Users:    users,
		Notes:    notes,
		Tokens:   tokens,
		Log:      log,
		validate: newValidator(),
	}
}

const maxBodyBytes = 1 << 20

// decode reads a JSON body into v and validates it. An empty body decodes
// as an empty object.
func (h *Handler) decode(r *http.Request, v any) error {
	if err := readJSON(r, v); err != nil {
		return err
	}
	return h.check(v)
}

func readJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("malformatted request body")
	}
	return nil
}
