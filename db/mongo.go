package db

import (
	"context"
	"errors"
	"fmt"

	"notes-api/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Mongo stores users and notes as documents in two collections.
type Mongo struct {
	client *mongo.Client
	users  *mongo.Collection
	notes  *mongo.Collection
}

// OpenMongo connects to uri, pings the server and ensures the unique
// username index exists.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{
		client: client,
		users:  client.Database(database).Collection("users"),
		notes:  client.Database(database).Collection("notes"),
	}

	_, err = m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create username index: %w", err)
	}
	return m, nil
}

func (m *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.Notes == nil {
		u.Notes = []bson.ObjectID{}
	}
	if _, err := m.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (m *Mongo) FindUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id})
}

func (m *Mongo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

func (m *Mongo) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := m.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (m *Mongo) FindUsersByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, m.users, bson.M{"_id": bson.M{"$in": ids}})
}

func (m *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, m.users, bson.M{})
}

func (m *Mongo) AppendNote(ctx context.Context, userID, noteID bson.ObjectID) error {
	res, err := m.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"notes": noteID}})
	if err != nil {
		return fmt.Errorf("append note ref: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) CreateNote(ctx context.Context, n *models.Note) error {
	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	if _, err := m.notes.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (m *Mongo) FindNoteByID(ctx context.Context, id bson.ObjectID) (*models.Note, error) {
	var n models.Note
	if err := m.notes.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return &n, nil
}

func (m *Mongo) FindNotesByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Note, error) {
	if len(ids) == 0 {
		return []models.Note{}, nil
	}
	return findAll[models.Note](ctx, m.notes, bson.M{"_id": bson.M{"$in": ids}})
}

func (m *Mongo) ListNotes(ctx context.Context) ([]models.Note, error) {
	return findAll[models.Note](ctx, m.notes, bson.M{})
}

func (m *Mongo) UpdateNote(ctx context.Context, id bson.ObjectID, content string, important bool) (*models.Note, error) {
	var n models.Note
	err := m.notes.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "important": important}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return &n, nil
}

func (m *Mongo) DeleteNote(ctx context.Context, id bson.ObjectID) error {
	if _, err := m.notes.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// reset empties both collections. Used by tests.
func (m *Mongo) reset(ctx context.Context) error {
	if _, err := m.notes.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	_, err := m.users.DeleteMany(ctx, bson.M{})
	return err
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}
