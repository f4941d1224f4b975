package db

import (
	"context"
	"sync"

	"notes-api/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Memory is an in-process Store. Records are copied on the way in and out.
type Memory struct {
	mu        sync.RWMutex
	users     map[bson.ObjectID]*models.User
	usernames map[string]bson.ObjectID
	userOrder []bson.ObjectID
	notes     map[bson.ObjectID]*models.Note
	noteOrder []bson.ObjectID
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[bson.ObjectID]*models.User),
		usernames: make(map[string]bson.ObjectID),
		notes:     make(map[bson.ObjectID]*models.Note),
	}
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.usernames[u.Username]; taken {
		return ErrDuplicateUsername
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	stored := copyUser(u)
	m.users[u.ID] = stored
	m.usernames[u.Username] = u.ID
	m.userOrder = append(m.userOrder, u.ID)
	return nil
}

func (m *Memory) FindUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (m *Memory) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usernames[username]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(m.users[id]), nil
}

func (m *Memory) FindUsersByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		out = append(out, *copyUser(m.users[id]))
	}
	return out, nil
}

func (m *Memory) AppendNote(ctx context.Context, userID, noteID bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Notes = append(u.Notes, noteID)
	return nil
}

func (m *Memory) CreateNote(ctx context.Context, n *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	m.notes[n.ID] = copyNote(n)
	m.noteOrder = append(m.noteOrder, n.ID)
	return nil
}

func (m *Memory) FindNoteByID(ctx context.Context, id bson.ObjectID) (*models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyNote(n), nil
}

func (m *Memory) FindNotesByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Note, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.notes[id]; ok {
			out = append(out, *copyNote(n))
		}
	}
	return out, nil
}

func (m *Memory) ListNotes(ctx context.Context) ([]models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Note, 0, len(m.noteOrder))
	for _, id := range m.noteOrder {
		out = append(out, *copyNote(m.notes[id]))
	}
	return out, nil
}

func (m *Memory) UpdateNote(ctx context.Context, id bson.ObjectID, content string, important bool) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	n.Content = content
	n.Important = important
	return copyNote(n), nil
}

func (m *Memory) DeleteNote(ctx context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[id]; !ok {
		return nil
	}
	delete(m.notes, id)
	for i, nid := range m.noteOrder {
		if nid == id {
			m.noteOrder = append(m.noteOrder[:i], m.noteOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close(ctx context.Context) error { return nil }

func copyUser(u *models.User) *models.User {
	c := *u
	c.Notes = append([]bson.ObjectID(nil), u.Notes...)
	return &c
}

func copyNote(n *models.Note) *models.Note {
	c := *n
	if n.User != nil {
		owner := *n.User
		c.User = &owner
	}
	return &c
}
