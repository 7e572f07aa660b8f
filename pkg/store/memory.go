package store

import (
	"context"
	"sync"
	"time"

	"github.com/pedigree-app/pedigree/pkg/errors"
	"github.com/pedigree-app/pedigree/pkg/person"
)

// Memory is an in-memory store for development and tests.
// Safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	users     map[string]User
	snapshots map[string]Snapshot
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     map[string]User{},
		snapshots: map[string]Snapshot{},
	}
}

func (m *Memory) UpsertUser(_ context.Context, u User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.users[u.GoogleSub]; ok {
		existing.Email = u.Email
		existing.Name = u.Name
		existing.PhotoURL = u.PhotoURL
		existing.UpdatedAt = now
		m.users[u.GoogleSub] = existing
		cp := existing
		return &cp, nil
	}

	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.GoogleSub] = u
	cp := u
	return &cp, nil
}

func (m *Memory) GetUser(_ context.Context, googleSub string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[googleSub]
	if !ok {
		return nil, notFound(errors.ErrCodeUserNotFound, googleSub)
	}
	cp := u
	return &cp, nil
}

func (m *Memory) GetSnapshot(_ context.Context, googleSub string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.snapshots[googleSub]
	if !ok {
		return nil, notFound(errors.ErrCodeSnapshotNotFound, googleSub)
	}
	cp := s
	cp.People = s.People.Clone()
	return &cp, nil
}

func (m *Memory) PutSnapshot(_ context.Context, googleSub string, people person.Graph) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putLocked(googleSub, people.Clone()), nil
}

func (m *Memory) PatchSnapshot(_ context.Context, googleSub string, upserts person.Graph, deletes []string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.snapshots[googleSub].People
	return m.putLocked(googleSub, ApplyPatch(current, upserts, deletes)), nil
}

func (m *Memory) DeleteSnapshot(_ context.Context, googleSub string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.snapshots[googleSub]
	delete(m.snapshots, googleSub)
	return ok, nil
}

func (m *Memory) putLocked(googleSub string, people person.Graph) *Snapshot {
	now := time.Now().UTC()
	s, ok := m.snapshots[googleSub]
	if !ok {
		s = Snapshot{GoogleSub: googleSub, CreatedAt: now}
	}
	if people == nil {
		people = person.Graph{}
	}
	s.People = people
	s.UpdatedAt = now
	m.snapshots[googleSub] = s

	cp := s
	cp.People = s.People.Clone()
	return &cp
}

var _ Store = (*Memory)(nil)
