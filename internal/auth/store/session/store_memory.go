// Package session tracks revoked session tokens by JTI. A token absent from
// the store is live; logout writes a revocation marker that outlives the
// token's own expiry.
package session

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps revocation markers with their expiry.
type InMemoryStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewInMemoryStore creates an empty revocation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{revoked: make(map[string]time.Time)}
}

// Revoke marks a token ID revoked until its natural expiry.
func (s *InMemoryStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = expiresAt
	return nil
}

// IsRevoked reports whether the token ID carries a live revocation marker.
func (s *InMemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	expiresAt, ok := s.revoked[jti]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		s.mu.Lock()
		delete(s.revoked, jti)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}
