package store

import (
	"context"
	"testing"

	"github.com/pedigree-app/pedigree/pkg/errors"
	"github.com/pedigree-app/pedigree/pkg/person"
)

func smallGraph() person.Graph {
	return person.Graph{
		"dad": {ID: "dad", Name: "Robert", SpouseID: "mom"},
		"mom": {ID: "mom", Name: "Linda", SpouseID: "dad"},
		"me":  {ID: "me", Name: "Alex", FatherID: "dad", MotherID: "mom"},
	}
}

func TestMemory_UpsertUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, err := m.UpsertUser(ctx, User{GoogleSub: "sub-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("UpsertUser() error: %v", err)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not set on create")
	}

	updated, err := m.UpsertUser(ctx, User{GoogleSub: "sub-1", Email: "b@example.com", Name: "Alex"})
	if err != nil {
		t.Fatalf("UpsertUser() update error: %v", err)
	}
	if updated.Email != "b@example.com" || updated.Name != "Alex" {
		t.Errorf("update did not refresh profile: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("update changed CreatedAt")
	}

	got, err := m.GetUser(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if got.Email != "b@example.com" {
		t.Errorf("GetUser().Email = %q, want %q", got.Email, "b@example.com")
	}
}

func TestMemory_GetUser_Missing(t *testing.T) {
	m := NewMemory()
	_, err := m.GetUser(context.Background(), "nobody")
	if !errors.Is(err, errors.ErrCodeUserNotFound) {
		t.Errorf("GetUser() error = %v, want USER_NOT_FOUND", err)
	}
}

func TestMemory_SnapshotLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.GetSnapshot(ctx, "sub-1"); !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		t.Errorf("GetSnapshot() before put = %v, want SNAPSHOT_NOT_FOUND", err)
	}

	put, err := m.PutSnapshot(ctx, "sub-1", smallGraph())
	if err != nil {
		t.Fatalf("PutSnapshot() error: %v", err)
	}
	if len(put.People) != 3 {
		t.Errorf("put snapshot has %d people, want 3", len(put.People))
	}

	got, err := m.GetSnapshot(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetSnapshot() error: %v", err)
	}
	if got.People.Person("me") == nil {
		t.Error("snapshot lost a person")
	}

	existed, err := m.DeleteSnapshot(ctx, "sub-1")
	if err != nil || !existed {
		t.Errorf("DeleteSnapshot() = %v, %v, want true, nil", existed, err)
	}
	existed, err = m.DeleteSnapshot(ctx, "sub-1")
	if err != nil || existed {
		t.Errorf("second DeleteSnapshot() = %v, %v, want false, nil", existed, err)
	}
}

func TestMemory_GetSnapshot_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, err := m.PutSnapshot(ctx, "sub-1", smallGraph()); err != nil {
		t.Fatalf("PutSnapshot() error: %v", err)
	}

	first, _ := m.GetSnapshot(ctx, "sub-1")
	first.People["me"].Name = "Mutated"

	second, _ := m.GetSnapshot(ctx, "sub-1")
	if second.People.Person("me").Name != "Alex" {
		t.Error("mutation of a returned snapshot leaked into the store")
	}
}

func TestMemory_PatchSnapshot_MissingStartsEmpty(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	snap, err := m.PatchSnapshot(ctx, "sub-1",
		person.Graph{"me": {ID: "me", Name: "Alex"}}, nil)
	if err != nil {
		t.Fatalf("PatchSnapshot() error: %v", err)
	}
	if len(snap.People) != 1 || snap.People.Person("me") == nil {
		t.Errorf("patched snapshot = %v, want single person", snap.People)
	}
}

func TestApplyPatch_DeletesBeforeUpserts(t *testing.T) {
	current := smallGraph()
	upserts := person.Graph{
		"me":  {ID: "me", Name: "Alexander", FatherID: "dad", MotherID: "mom"},
		"kid": {ID: "kid", Name: "Noah", FatherID: "me"},
	}

	// "me" appears in both lists; the upsert must win.
	next := ApplyPatch(current, upserts, []string{"me", "mom"})

	if p := next.Person("me"); p == nil || p.Name != "Alexander" {
		t.Errorf("upserted person = %+v, want survivor of delete+upsert", p)
	}
	if next.Person("mom") != nil {
		t.Error("deleted person still present")
	}
	if next.Person("kid") == nil {
		t.Error("new person not added")
	}
	// The delete pruned the dangling mother reference.
	if ref := next.Person("me").MotherID; ref != "" {
		t.Errorf("MotherID = %q, want pruned", ref)
	}
	// Asymmetric spouse link left by mom's deletion is normalized away.
	if ref := next.Person("dad").SpouseID; ref != "" {
		t.Errorf("dad SpouseID = %q, want cleared", ref)
	}
}

func TestApplyPatch_RekeysUpsertIDs(t *testing.T) {
	next := ApplyPatch(nil, person.Graph{"a": {ID: "mismatched"}}, nil)
	if p := next.Person("a"); p == nil || p.ID != "a" {
		t.Errorf("Person(a) = %+v, want key to win over embedded id", p)
	}
}

func TestApplyPatch_DoesNotMutateCurrent(t *testing.T) {
	current := smallGraph()
	ApplyPatch(current, person.Graph{"me": {ID: "me", Name: "Changed"}}, []string{"mom"})

	if current.Person("mom") == nil {
		t.Error("delete leaked into the input graph")
	}
	if current.Person("me").Name != "Alex" {
		t.Error("upsert leaked into the input graph")
	}
}
