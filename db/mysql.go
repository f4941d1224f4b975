package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"notes-api/models"

	"github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const mysqlDuplicateEntry = 1062

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(24) PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id CHAR(24) PRIMARY KEY,
		content TEXT NOT NULL,
		important BOOLEAN NOT NULL DEFAULT FALSE,
		user_id CHAR(24) NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS user_notes (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id CHAR(24) NOT NULL,
		note_id CHAR(24) NOT NULL,
		INDEX idx_user_notes_user (user_id)
	)`,
}

// MySQL keeps users and notes in tables. Note refs live in user_notes, in
// append order; there are no foreign keys, matching the weak note/user link.
type MySQL struct {
	db *sql.DB
}

func OpenMySQL(ctx context.Context, dsn string) (*MySQL, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	m := NewMySQL(conn)
	if err := m.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return m, nil
}

// NewMySQL wraps an open connection pool without touching the schema.
func NewMySQL(conn *sql.DB) *MySQL {
	return &MySQL{db: conn}
}

func (m *MySQL) Migrate(ctx context.Context) error {
	for _, stmt := range mysqlSchema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (m *MySQL) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO users (id, username, name, password_hash) VALUES (?, ?, ?, ?)",
		u.ID.Hex(), u.Username, u.Name, u.PasswordHash)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if u.Notes == nil {
		u.Notes = []bson.ObjectID{}
	}
	return nil
}

const userColumns = "SELECT id, username, name, password_hash FROM users"

func (m *MySQL) FindUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return m.findUser(ctx, userColumns+" WHERE id = ?", id.Hex())
}

func (m *MySQL) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, userColumns+" WHERE username = ?", username)
}

func (m *MySQL) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	users, err := m.queryUsers(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

func (m *MySQL) FindUsersByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	in, args := inClause(ids)
	return m.queryUsers(ctx, userColumns+" WHERE id IN "+in+" ORDER BY id", args...)
}

func (m *MySQL) ListUsers(ctx context.Context) ([]models.User, error) {
	return m.queryUsers(ctx, userColumns+" ORDER BY id")
}

func (m *MySQL) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var (
			u  models.User
			id string
		)
		if err := rows.Scan(&id, &u.Username, &u.Name, &u.PasswordHash); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u.ID, err = bson.ObjectIDFromHex(id); err != nil {
			return nil, fmt.Errorf("scan user id %q: %w", id, err)
		}
		u.Notes = []bson.ObjectID{}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	rows.Close()

	if err := m.loadNoteRefs(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *MySQL) loadNoteRefs(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]bson.ObjectID, len(users))
	index := make(map[string]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
		index[u.ID.Hex()] = i
	}

	in, args := inClause(ids)
	rows, err := m.db.QueryContext(ctx,
		"SELECT user_id, note_id FROM user_notes WHERE user_id IN "+in+" ORDER BY seq", args...)
	if err != nil {
		return fmt.Errorf("query note refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, noteID string
		if err := rows.Scan(&userID, &noteID); err != nil {
			return fmt.Errorf("scan note ref: %w", err)
		}
		ref, err := bson.ObjectIDFromHex(noteID)
		if err != nil {
			return fmt.Errorf("scan note ref %q: %w", noteID, err)
		}
		if i, ok := index[userID]; ok {
			users[i].Notes = append(users[i].Notes, ref)
		}
	}
	return rows.Err()
}

func (m *MySQL) AppendNote(ctx context.Context, userID, noteID bson.ObjectID) error {
	res, err := m.db.ExecContext(ctx,
		"INSERT INTO user_notes (user_id, note_id) SELECT id, ? FROM users WHERE id = ?",
		noteID.Hex(), userID.Hex())
	if err != nil {
		return fmt.Errorf("append note ref: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append note ref: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MySQL) CreateNote(ctx context.Context, n *models.Note) error {
	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	var owner any
	if n.User != nil {
		owner = n.User.Hex()
	}
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO notes (id, content, important, user_id) VALUES (?, ?, ?, ?)",
		n.ID.Hex(), n.Content, n.Important, owner)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

const noteColumns = "SELECT id, content, important, user_id FROM notes"

func (m *MySQL) FindNoteByID(ctx context.Context, id bson.ObjectID) (*models.Note, error) {
	notes, err := m.queryNotes(ctx, noteColumns+" WHERE id = ?", id.Hex())
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, ErrNotFound
	}
	return &notes[0], nil
}

func (m *MySQL) FindNotesByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Note, error) {
	if len(ids) == 0 {
		return []models.Note{}, nil
	}
	in, args := inClause(ids)
	return m.queryNotes(ctx, noteColumns+" WHERE id IN "+in+" ORDER BY id", args...)
}

func (m *MySQL) ListNotes(ctx context.Context) ([]models.Note, error) {
	return m.queryNotes(ctx, noteColumns+" ORDER BY id")
}

func (m *MySQL) queryNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var (
			n     models.Note
			id    string
			owner sql.NullString
		)
		if err := rows.Scan(&id, &n.Content, &n.Important, &owner); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if n.ID, err = bson.ObjectIDFromHex(id); err != nil {
			return nil, fmt.Errorf("scan note id %q: %w", id, err)
		}
		if owner.Valid {
			ref, err := bson.ObjectIDFromHex(owner.String)
			if err != nil {
				return nil, fmt.Errorf("scan note owner %q: %w", owner.String, err)
			}
			n.User = &ref
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateNote does not rely on RowsAffected, which MySQL reports as zero when
// the new values equal the old ones.
func (m *MySQL) UpdateNote(ctx context.Context, id bson.ObjectID, content string, important bool) (*models.Note, error) {
	_, err := m.db.ExecContext(ctx,
		"UPDATE notes SET content = ?, important = ? WHERE id = ?", content, important, id.Hex())
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return m.FindNoteByID(ctx, id)
}

func (m *MySQL) DeleteNote(ctx context.Context, id bson.ObjectID) error {
	if _, err := m.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id.Hex()); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

func (m *MySQL) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *MySQL) Close(ctx context.Context) error {
	return m.db.Close()
}

func inClause(ids []bson.ObjectID) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.Hex()
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}
