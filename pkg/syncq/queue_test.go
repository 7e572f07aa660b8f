package syncq

import (
	"context"
	"errors"
	"testing"

	"github.com/pedigree-app/pedigree/pkg/person"
)

// fakeFlusher records pushed patches and fails on demand.
type fakeFlusher struct {
	pushed []Patch
	err    error
}

func (f *fakeFlusher) Push(_ context.Context, p Patch) error {
	if f.err != nil {
		return f.err
	}
	f.pushed = append(f.pushed, p)
	return nil
}

func upsert(id, name string) Patch {
	return Patch{Upserts: map[string]*person.Person{id: {ID: id, Name: name}}}
}

func TestQueue_CoalescesUpserts(t *testing.T) {
	q := NewQueue(&fakeFlusher{})
	q.Enqueue(upsert("p1", "first"))
	q.Enqueue(upsert("p1", "second"))

	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
	p := q.Drain()
	if p.Upserts["p1"].Name != "second" {
		t.Errorf("coalesced upsert = %q, want latest write", p.Upserts["p1"].Name)
	}
}

func TestQueue_DeleteCancelsUpsert(t *testing.T) {
	q := NewQueue(&fakeFlusher{})
	q.Enqueue(upsert("p1", "Alex"))
	q.Enqueue(Patch{Deletes: []string{"p1"}})

	p := q.Drain()
	if len(p.Upserts) != 0 {
		t.Errorf("Upserts = %v, want cancelled by delete", p.Upserts)
	}
	if len(p.Deletes) != 1 || p.Deletes[0] != "p1" {
		t.Errorf("Deletes = %v, want [p1]", p.Deletes)
	}
}

func TestQueue_UpsertRevivesDelete(t *testing.T) {
	q := NewQueue(&fakeFlusher{})
	q.Enqueue(Patch{Deletes: []string{"p1"}})
	q.Enqueue(upsert("p1", "Alex"))

	p := q.Drain()
	if len(p.Deletes) != 0 {
		t.Errorf("Deletes = %v, want revived by upsert", p.Deletes)
	}
	if p.Upserts["p1"] == nil {
		t.Error("revived upsert missing")
	}
}

func TestQueue_EnqueueClonesPersons(t *testing.T) {
	q := NewQueue(&fakeFlusher{})
	p := &person.Person{ID: "p1", Name: "Alex"}
	q.Enqueue(Patch{Upserts: map[string]*person.Person{"p1": p}})

	p.Name = "Mutated"
	if got := q.Drain().Upserts["p1"].Name; got != "Alex" {
		t.Errorf("queued person = %q, caller mutation leaked in", got)
	}
}

func TestQueue_FlushEmpty(t *testing.T) {
	f := &fakeFlusher{}
	q := NewQueue(f)
	if err := q.Flush(context.Background()); err != nil {
		t.Errorf("Flush() on empty queue = %v, want nil", err)
	}
	if len(f.pushed) != 0 {
		t.Error("empty flush still pushed a patch")
	}
}

func TestQueue_FlushFailureRequeues(t *testing.T) {
	f := &fakeFlusher{err: errors.New("network down")}
	q := NewQueue(f)
	q.Enqueue(upsert("p1", "Alex"))

	if err := q.Flush(context.Background()); err == nil {
		t.Fatal("Flush() = nil, want push error")
	}
	if q.Len() != 1 {
		t.Fatalf("Len() after failed flush = %d, want re-queued patch", q.Len())
	}

	f.err = nil
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() after recovery = %v, want nil", err)
	}
	if len(f.pushed) != 1 || f.pushed[0].Upserts["p1"] == nil {
		t.Errorf("pushed = %v, want the re-queued patch", f.pushed)
	}
}

func TestQueue_RequeueKeepsNewerWrites(t *testing.T) {
	f := &fakeFlusher{err: errors.New("network down")}
	q := NewQueue(f)
	q.Enqueue(upsert("p1", "old"))

	if err := q.Flush(context.Background()); err == nil {
		t.Fatal("Flush() = nil, want push error")
	}
	// A write that lands after the failed flush wins over the re-queued
	// one.
	q.Enqueue(upsert("p1", "new"))

	if got := q.Drain().Upserts["p1"].Name; got != "new" {
		t.Errorf("pending upsert = %q, want the newer write", got)
	}
}
