package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"notes-api/apperr"
	"notes-api/db"
	"notes-api/middleware"
	"notes-api/models"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type createNoteRequest struct {
	Content   string `json:"content" validate:"required"`
	Important bool   `json:"important"`
	UserID    string `json:"userId"`
}

type updateNoteRequest struct {
	Content   string `json:"content" validate:"required"`
	Important bool   `json:"important"`
}

var errInvalidUser = apperr.Validation("UserId missing or not valid")

func noteID(r *http.Request) (bson.ObjectID, error) {
	return db.ParseID(chi.URLParam(r, "id"))
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) error {
	notes, err := h.Notes.ListNotes(r.Context())
	if err != nil {
		return err
	}

	owners, err := h.ownersOf(r.Context(), notes)
	if err != nil {
		return err
	}

	out := make([]models.NoteView, 0, len(notes))
	for i := range notes {
		out = append(out, h.view(&notes[i], owners))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) error {
	id, err := noteID(r)
	if err != nil {
		return err
	}
	note, err := h.Notes.FindNoteByID(r.Context(), id)
	if err != nil {
		return err
	}
	return h.writeNote(w, r, http.StatusOK, note)
}

// CreateNote resolves the owner before validating the content, then saves
// the note and appends it to the owner's refs. The two writes are
// independent; a failure between them leaves the note unlinked.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) error {
	var req createNoteRequest
	if err := readJSON(r, &req); err != nil {
		return err
	}

	userID := req.UserID
	if userID == "" {
		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			userID = claims.UserID
		}
	}
	owner, err := h.lookupOwner(r.Context(), userID)
	if err != nil {
		return err
	}
	if err := h.check(&req); err != nil {
		return err
	}

	note := &models.Note{
		Content:   req.Content,
		Important: req.Important,
		User:      &owner.ID,
	}
	if err := h.Notes.CreateNote(r.Context(), note); err != nil {
		return err
	}
	if err := h.Users.AppendNote(r.Context(), owner.ID, note.ID); err != nil {
		return fmt.Errorf("link note %s to user %s: %w", note.ID.Hex(), owner.ID.Hex(), err)
	}

	middleware.WriteJSON(w, http.StatusCreated, models.NewNoteView(note, owner))
	return nil
}

func (h *Handler) lookupOwner(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errInvalidUser
	}
	id, err := db.ParseID(userID)
	if err != nil {
		return nil, errInvalidUser
	}
	owner, err := h.Users.FindUserByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errInvalidUser
	}
	return owner, err
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) error {
	id, err := noteID(r)
	if err != nil {
		return err
	}
	var req updateNoteRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	note, err := h.Notes.UpdateNote(r.Context(), id, req.Content, req.Important)
	if err != nil {
		return err
	}
	return h.writeNote(w, r, http.StatusOK, note)
}

// DeleteNote answers 204 whether or not the note existed.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) error {
	id, err := noteID(r)
	if err != nil {
		return err
	}
	if err := h.Notes.DeleteNote(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) writeNote(w http.ResponseWriter, r *http.Request, status int, note *models.Note) error {
	owners, err := h.ownersOf(r.Context(), []models.Note{*note})
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, status, h.view(note, owners))
	return nil
}

func (h *Handler) view(note *models.Note, owners map[bson.ObjectID]*models.User) models.NoteView {
	var owner *models.User
	if note.User != nil {
		owner = owners[*note.User]
	}
	return models.NewNoteView(note, owner)
}

// ownersOf loads the distinct owners referenced by notes.
func (h *Handler) ownersOf(ctx context.Context, notes []models.Note) (map[bson.ObjectID]*models.User, error) {
	seen := make(map[bson.ObjectID]bool)
	var ids []bson.ObjectID
	for _, n := range notes {
		if n.User != nil && !seen[*n.User] {
			seen[*n.User] = true
			ids = append(ids, *n.User)
		}
	}
	users, err := h.Users.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[bson.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	return byID, nil
}
