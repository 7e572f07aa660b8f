// Package syncq batches local pedigree edits into delta patches and
// pushes them to the sync backend.
//
// The queue is an explicit value object owned by the persistence layer:
// UI code calls [Queue.Enqueue] after each committed edit, and a flush
// — triggered by a timer, a screen transition, or an explicit save —
// sends one coalesced patch over the wire. The layout and kinship
// packages never see this machinery.
package syncq

import (
	"context"
	"sync"

	"github.com/pedigree-app/pedigree/pkg/person"
)

// Patch is one delta against a remote snapshot: persons to upsert and
// person ids to delete. The backend applies deletes before upserts.
type Patch struct {
	Upserts map[string]*person.Person `json:"upserts"`
	Deletes []string                  `json:"deletes"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p.Upserts) == 0 && len(p.Deletes) == 0
}

// clone deep-copies the patch so queued state cannot alias caller data.
func (p Patch) clone() Patch {
	cp := Patch{}
	if len(p.Upserts) > 0 {
		cp.Upserts = make(map[string]*person.Person, len(p.Upserts))
		for id, pr := range p.Upserts {
			if pr != nil {
				cp.Upserts[id] = pr.Clone()
			}
		}
	}
	if len(p.Deletes) > 0 {
		cp.Deletes = append([]string(nil), p.Deletes...)
	}
	return cp
}

// Flusher sends one coalesced patch to its destination. Implemented by
// [Client]; tests substitute their own.
type Flusher interface {
	Push(ctx context.Context, patch Patch) error
}

// Queue accumulates patches between flushes, coalescing them so the
// wire carries at most one operation per person: a later upsert of the
// same id replaces the earlier one, and a delete cancels any pending
// upsert. Safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	pending Patch
	flusher Flusher
}

// NewQueue creates a queue that flushes through the given flusher.
func NewQueue(f Flusher) *Queue {
	return &Queue{flusher: f}
}

// Enqueue merges a patch into the pending delta.
func (q *Queue) Enqueue(p Patch) {
	if p.IsEmpty() {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending.Upserts == nil {
		q.pending.Upserts = map[string]*person.Person{}
	}

	// Deletes first: a delete cancels a pending upsert of the same id.
	for _, id := range p.Deletes {
		delete(q.pending.Upserts, id)
		if !contains(q.pending.Deletes, id) {
			q.pending.Deletes = append(q.pending.Deletes, id)
		}
	}
	// An upsert of a previously deleted id revives it.
	for id, pr := range p.Upserts {
		if pr == nil {
			continue
		}
		q.pending.Upserts[id] = pr.Clone()
		q.pending.Deletes = remove(q.pending.Deletes, id)
	}
}

// Len returns the number of pending operations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending.Upserts) + len(q.pending.Deletes)
}

// Drain removes and returns the pending patch without sending it.
func (q *Queue) Drain() Patch {
	q.mu.Lock()
	defer q.mu.Unlock()
	p := q.pending
	q.pending = Patch{}
	return p
}

// Flush sends the pending patch through the flusher. On failure the
// patch is re-queued (merged under anything enqueued meanwhile) so no
// edit is lost; on success or an already-empty queue Flush returns nil.
func (q *Queue) Flush(ctx context.Context) error {
	p := q.Drain()
	if p.IsEmpty() {
		return nil
	}
	if err := q.flusher.Push(ctx, p.clone()); err != nil {
		q.requeue(p)
		return err
	}
	return nil
}

// requeue merges a failed patch back in front of the pending delta:
// operations enqueued after the failed flush win over the re-queued
// ones.
func (q *Queue) requeue(p Patch) {
	q.mu.Lock()
	newer := q.pending
	q.pending = Patch{}
	q.mu.Unlock()

	q.Enqueue(p)
	q.Enqueue(newer)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
