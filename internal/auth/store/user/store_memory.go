// Package user stores gateway principals. Provisioning is an external
// concern; the gateway reads identities and updates only the password hash
// via the settings credential domain.
package user

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"chainsync/internal/auth"
	dErrors "chainsync/pkg/domain-errors"
)

// InMemoryStore keeps users in a map, keyed by lowercased username.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]auth.User
}

// NewInMemoryStore creates an empty user store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]auth.User)}
}

// Create adds a user, rejecting duplicate usernames.
func (s *InMemoryStore) Create(_ context.Context, u auth.User) error {
	key := strings.ToLower(u.Username)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[key]; exists {
		return dErrors.New(dErrors.CodeConflict, "username already exists")
	}
	s.users[key] = u
	return nil
}

// FindByUsername looks up a user by handle (case-insensitive).
func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[strings.ToLower(username)]; ok {
		return u, nil
	}
	return auth.User{}, dErrors.New(dErrors.CodeNotFound, "user not found")
}

// FindByID looks up a user by principal ID.
func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return auth.User{}, dErrors.New(dErrors.CodeNotFound, "user not found")
}

// UpdatePasswordHash replaces the stored credential derivation.
func (s *InMemoryStore) UpdatePasswordHash(_ context.Context, username, hash string) error {
	key := strings.ToLower(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[key]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	u.PasswordHash = hash
	s.users[key] = u
	return nil
}
