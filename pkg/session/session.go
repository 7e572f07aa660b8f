// Package session provides session management for signed-in users.
//
// This package defines interfaces for session storage with
// implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - redis: Redis-backed storage for production multi-instance deployments
//   - file: File-based storage for CLI use
//
// Sessions store user identity data (Google subject, email, display
// name) with automatic expiration. The Store interface supports
// Get/Set/Delete operations plus cleanup of expired sessions.
//
// # Usage
//
// Create a session store:
//
//	// Development
//	store := session.NewMemoryStore()
//
//	// Production
//	store := session.NewRedisStore(redisClient)
//
//	// CLI
//	store, err := session.NewFileStore("")  // Uses ~/.config/pedigree/sessions/
//
// Manage sessions:
//
//	sess, err := session.New(identity, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Identity is the verified Google identity attached to a session.
// GoogleSub is the stable account subject used to key remote pedigree
// snapshots.
type Identity struct {
	GoogleSub string `json:"google_sub"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

// Verifier resolves a bearer access token into a Google identity.
// The actual token verification protocol is outside this module's
// scope; the backend accepts any implementation. StaticVerifier is
// provided for development and tests.
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*Identity, error)
}

// StaticVerifier maps known tokens to identities. Intended for
// development and tests only.
type StaticVerifier map[string]Identity

// Verify implements [Verifier].
func (v StaticVerifier) Verify(_ context.Context, accessToken string) (*Identity, error) {
	id, ok := v[accessToken]
	if !ok {
		return nil, ErrNotFound
	}
	return &id, nil
}

// Session stores user session data.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserID returns a storage-compatible user identifier.
// Format: "google:{sub}" to namespace by auth provider.
func (s *Session) UserID() string {
	if s == nil || s.Identity.GoogleSub == "" {
		return ""
	}
	return "google:" + s.Identity.GoogleSub
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for backends
	// with native TTL support such as Redis).
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a new session for the given identity.
func New(identity Identity, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		Identity:  identity,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
