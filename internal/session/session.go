// Package session provides Valkey-backed storage for editor sessions:
// the server-held authoring state of a certificate layout. Sessions are
// identified by an opaque id returned to the admin UI and expire
// automatically when editing stops.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"certpress/internal/layout"
)

const (
	// DefaultTTL is how long an idle editing session lives in Valkey.
	// Every mutation refreshes it.
	DefaultTTL = 2 * time.Hour

	// saveLockTTL bounds how long a save may hold the session lock, so
	// a crashed save never wedges the session.
	saveLockTTL = 30 * time.Second

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "editor:"

	// lockPrefix namespaces the per-session save locks.
	lockPrefix = "editor:lock:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// State is the editing state stored in Valkey: the working document,
// the transient selection, and where a save should land.
type State struct {
	// TemplateID is set when editing an existing template; nil while
	// authoring a new one.
	TemplateID *uuid.UUID `json:"templateId,omitempty"`

	Name     string          `json:"name"`
	Document layout.Document `json:"document"`
	Selected string          `json:"selected,omitempty"`

	OwnerID   uuid.UUID `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store manages editor session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store backed by the given Valkey client.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
	}
}

// Create stores a new editing session and returns its id.
func (s *Store) Create(ctx context.Context, state *State) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	now := time.Now()
	state.CreatedAt = now
	state.UpdatedAt = now

	if err := s.write(ctx, id, state); err != nil {
		return "", err
	}
	return id, nil
}

// Get retrieves an editing session by id. Returns nil if it does not
// exist or has expired.
func (s *Store) Get(ctx context.Context, id string) (*State, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &state, nil
}

// Update replaces the session state and refreshes its TTL.
func (s *Store) Update(ctx context.Context, id string, state *State) error {
	state.UpdatedAt = time.Now()
	return s.write(ctx, id, state)
}

// Delete removes an editing session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// AcquireSaveLock takes the per-session save lock. It returns false
// when another save is already in flight for this session.
func (s *Store) AcquireSaveLock(ctx context.Context, id string) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockPrefix+id, "1", saveLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("session lock: %w", err)
	}
	return ok, nil
}

// ReleaseSaveLock releases the per-session save lock.
func (s *Store) ReleaseSaveLock(ctx context.Context, id string) {
	s.client.Del(ctx, lockPrefix+id)
}

func (s *Store) write(ctx context.Context, id string, state *State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
