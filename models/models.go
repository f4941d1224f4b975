package models

import "go.mongodb.org/mongo-driver/v2/bson"

// User is the stored account. PasswordHash never leaves the server.
type User struct {
	ID           bson.ObjectID   `bson:"_id"`
	Username     string          `bson:"username"`
	Name         string          `bson:"name"`
	PasswordHash string          `bson:"passwordHash"`
	Notes        []bson.ObjectID `bson:"notes"`
}

// Note is the stored note. User is a lookup-only back-reference to the owner.
type Note struct {
	ID        bson.ObjectID  `bson:"_id"`
	Content   string         `bson:"content"`
	Important bool           `bson:"important"`
	User      *bson.ObjectID `bson:"user,omitempty"`
}

// NoteSummary is the note shape embedded in a user listing.
type NoteSummary struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Important bool   `json:"important"`
}

// UserSummary is the owner shape embedded in a note.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type UserView struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Name     string        `json:"name"`
	Notes    []NoteSummary `json:"notes"`
}

type NoteView struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	Important bool         `json:"important"`
	User      *UserSummary `json:"user"`
}

// NewUserView renders u with the notes that could be resolved from its refs,
// in ref order. Refs missing from notes are skipped.
func NewUserView(u *User, notes map[bson.ObjectID]*Note) UserView {
	v := UserView{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.Name,
		Notes:    make([]NoteSummary, 0, len(u.Notes)),
	}
	for _, ref := range u.Notes {
		n, ok := notes[ref]
		if !ok {
			continue
		}
		v.Notes = append(v.Notes, NoteSummary{ID: n.ID.Hex(), Content: n.Content, Important: n.Important})
	}
	return v
}

// NewNoteView renders n with its owner; owner may be nil.
func NewNoteView(n *Note, owner *User) NoteView {
	v := NoteView{
		ID:        n.ID.Hex(),
		Content:   n.Content,
		Important: n.Important,
	}
	if owner != nil {
		v.User = &UserSummary{ID: owner.ID.Hex(), Username: owner.Username, Name: owner.Name}
	}
	return v
}
