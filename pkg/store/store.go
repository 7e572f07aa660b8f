// Package store persists users and pedigree snapshots for the sync
// backend.
//
// A snapshot is the full people-by-id graph of one user, keyed by the
// user's Google account subject. Two implementations are provided: an
// in-memory store for development and tests, and a MongoDB store for
// production.
package store

import (
	"context"
	"time"

	"github.com/pedigree-app/pedigree/pkg/errors"
	"github.com/pedigree-app/pedigree/pkg/person"
)

// User is a registered account, keyed by Google subject.
type User struct {
	GoogleSub string    `json:"google_sub" bson:"google_sub"`
	Email     string    `json:"email" bson:"email"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Snapshot is the persisted pedigree of one user.
type Snapshot struct {
	GoogleSub string       `json:"google_sub" bson:"google_sub"`
	People    person.Graph `json:"people_by_id" bson:"people_by_id"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// Store is the persistence interface the HTTP handlers depend on.
//
// GetUser and GetSnapshot return a NOT_FOUND_* coded error (see
// pkg/errors) when the record does not exist; callers translate that
// into a 404. All writes are full-document replacements — the patch
// operation reads, merges and replaces, matching the snapshot's
// single-document design.
type Store interface {
	// UpsertUser creates or refreshes a user record and returns it.
	UpsertUser(ctx context.Context, u User) (*User, error)

	// GetUser returns the user for a Google subject.
	GetUser(ctx context.Context, googleSub string) (*User, error)

	// GetSnapshot returns the user's snapshot.
	GetSnapshot(ctx context.Context, googleSub string) (*Snapshot, error)

	// PutSnapshot replaces the user's snapshot wholesale.
	PutSnapshot(ctx context.Context, googleSub string, people person.Graph) (*Snapshot, error)

	// PatchSnapshot applies a delta: deletes first, then upserts, so a
	// patch touching the same id in both lists keeps the upsert.
	// Patching a missing snapshot starts from an empty graph.
	PatchSnapshot(ctx context.Context, googleSub string, upserts person.Graph, deletes []string) (*Snapshot, error)

	// DeleteSnapshot removes the snapshot. Reports whether one existed.
	DeleteSnapshot(ctx context.Context, googleSub string) (bool, error)
}

// ApplyPatch merges a delta into a graph: deletes first, then upserts.
// Deleted ids also have their dangling references pruned on the
// remaining persons, so a patched snapshot is always safe to lay out.
func ApplyPatch(current person.Graph, upserts person.Graph, deletes []string) person.Graph {
	next := current.Clone()
	if next == nil {
		next = person.Graph{}
	}
	for _, id := range deletes {
		next.Delete(id)
	}
	for id, p := range upserts {
		if p == nil {
			continue
		}
		cp := p.Clone()
		cp.ID = id
		next[id] = cp
	}
	next.Normalize()
	return next
}

// notFound builds the coded error for a missing record.
func notFound(code errors.Code, sub string) error {
	return errors.New(code, "no record for google subject %q", sub)
}
