package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes-api/config"
	"notes-api/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrMalformedID       = errors.New("malformatted id")
	ErrDuplicateUsername = errors.New("username must be unique")
)

type UserStore interface {
	// CreateUser assigns u.ID when it is zero. A taken username fails with
	// ErrDuplicateUsername.
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	// FindUsersByIDs returns the users that exist; unknown ids are skipped.
	FindUsersByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// AppendNote adds noteID to the end of the user's note refs.
	AppendNote(ctx context.Context, userID, noteID bson.ObjectID) error
}

type NoteStore interface {
	// CreateNote assigns n.ID when it is zero.
	CreateNote(ctx context.Context, n *models.Note) error
	FindNoteByID(ctx context.Context, id bson.ObjectID) (*models.Note, error)
	FindNotesByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Note, error)
	ListNotes(ctx context.Context) ([]models.Note, error)
	UpdateNote(ctx context.Context, id bson.ObjectID, content string, important bool) (*models.Note, error)
	// DeleteNote succeeds whether or not the note exists.
	DeleteNote(ctx context.Context, id bson.ObjectID) error
}

type Store interface {
	UserStore
	NoteStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ParseID converts a 24 character hex string into an id.
func ParseID(s string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return bson.NilObjectID, ErrMalformedID
	}
	return id, nil
}

const connectTimeout = 10 * time.Second

// Open connects the backend selected by cfg.Store and prepares its schema.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Store {
	case config.StoreMongo:
		m, err := OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StoreMySQL:
		m, err := OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StoreMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
