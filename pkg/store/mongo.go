package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pedigree-app/pedigree/pkg/errors"
	"github.com/pedigree-app/pedigree/pkg/person"
)

// Collection names.
const (
	usersCollection     = "users"
	snapshotsCollection = "pedigree_snapshots"
)

// Mongo is a MongoDB-backed store. One document per user and one per
// snapshot, both keyed by the google_sub field.
type Mongo struct {
	users     *mongo.Collection
	snapshots *mongo.Collection
}

// NewMongo wraps an existing database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		users:     db.Collection(usersCollection),
		snapshots: db.Collection(snapshotsCollection),
	}
}

// EnsureIndexes creates the unique google_sub indexes.
// Call once at startup.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "google_sub", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := m.users.Indexes().CreateOne(ctx, idx); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create users index")
	}
	if _, err := m.snapshots.Indexes().CreateOne(ctx, idx); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create snapshots index")
	}
	return nil
}

func (m *Mongo) UpsertUser(ctx context.Context, u User) (*User, error) {
	now := time.Now().UTC()
	filter := bson.M{"google_sub": u.GoogleSub}
	update := bson.M{
		"$set": bson.M{
			"email":      u.Email,
			"name":       u.Name,
			"photo_url":  u.PhotoURL,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"google_sub": u.GoogleSub,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out User
	if err := m.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "upsert user %q", u.GoogleSub)
	}
	return &out, nil
}

func (m *Mongo) GetUser(ctx context.Context, googleSub string) (*User, error) {
	var out User
	err := m.users.FindOne(ctx, bson.M{"google_sub": googleSub}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(errors.ErrCodeUserNotFound, googleSub)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "get user %q", googleSub)
	}
	return &out, nil
}

func (m *Mongo) GetSnapshot(ctx context.Context, googleSub string) (*Snapshot, error) {
	var out Snapshot
	err := m.snapshots.FindOne(ctx, bson.M{"google_sub": googleSub}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(errors.ErrCodeSnapshotNotFound, googleSub)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "get snapshot %q", googleSub)
	}
	if out.People == nil {
		out.People = person.Graph{}
	}
	return &out, nil
}

func (m *Mongo) PutSnapshot(ctx context.Context, googleSub string, people person.Graph) (*Snapshot, error) {
	if people == nil {
		people = person.Graph{}
	}
	now := time.Now().UTC()
	filter := bson.M{"google_sub": googleSub}
	update := bson.M{
		"$set": bson.M{
			"people_by_id": people,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"google_sub": googleSub,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out Snapshot
	if err := m.snapshots.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "put snapshot %q", googleSub)
	}
	return &out, nil
}

// PatchSnapshot reads, merges and replaces the snapshot document.
// The snapshot is a single document owned by one user, so read-merge-
// write is the unit of update; conflict resolution between concurrent
// writers is out of scope.
func (m *Mongo) PatchSnapshot(ctx context.Context, googleSub string, upserts person.Graph, deletes []string) (*Snapshot, error) {
	current := person.Graph{}
	if snap, err := m.GetSnapshot(ctx, googleSub); err == nil {
		current = snap.People
	} else if !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		return nil, err
	}
	return m.PutSnapshot(ctx, googleSub, ApplyPatch(current, upserts, deletes))
}

func (m *Mongo) DeleteSnapshot(ctx context.Context, googleSub string) (bool, error) {
	res, err := m.snapshots.DeleteOne(ctx, bson.M{"google_sub": googleSub})
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeStorage, err, "delete snapshot %q", googleSub)
	}
	return res.DeletedCount > 0, nil
}

var _ Store = (*Mongo)(nil)
