package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"notes-api/apperr"
	"notes-api/auth"
	"notes-api/db"

	"github.com/sirupsen/logrus"
)

// HandlerFunc is an http handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler translates handler errors into HTTP responses.
type ErrorHandler struct {
	Log *logrus.Entry
}

func NewErrorHandler(log *logrus.Entry) *ErrorHandler {
	return &ErrorHandler{Log: log}
}

func (e *ErrorHandler) Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			e.Respond(w, r, err)
		}
	}
}

// Respond writes the response for err. Errors it does not recognise are
// logged and answered with a plain 500.
func (e *ErrorHandler) Respond(w http.ResponseWriter, r *http.Request, err error) {
	log := e.Log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"error":  err.Error(),
	})

	var (
		validation *apperr.ValidationError
		authErr    *apperr.AuthError
	)
	switch {
	case errors.Is(err, db.ErrMalformedID):
		log.Info("malformed id")
		WriteError(w, http.StatusBadRequest, "malformatted id")
	case errors.As(err, &validation):
		log.Info("validation failed")
		WriteError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, db.ErrDuplicateUsername):
		log.Info("duplicate username")
		WriteError(w, http.StatusBadRequest, "username must be unique")
	case errors.As(err, &authErr):
		log.Info("authentication failed")
		WriteError(w, http.StatusUnauthorized, authErr.Message)
	case errors.Is(err, auth.ErrTokenExpired):
		log.Info("token expired")
		WriteError(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		log.Info("invalid token")
		WriteError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, db.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		log.Error("unhandled error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// UnknownEndpoint answers routes that match nothing.
func UnknownEndpoint(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "unknown endpoint")
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}
