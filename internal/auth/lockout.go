package auth

import (
	"context"
	"sync"
	"time"

	"chainsync/pkg/requestcontext"
)

// LockoutPolicy bounds repeated failed attempts per identity.
type LockoutPolicy struct {
	AttemptsPerWindow int
	Window            time.Duration
	LockDuration      time.Duration
}

// DefaultLockoutPolicy: 5 attempts per 15 minutes, then a 15 minute lock.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		AttemptsPerWindow: 5,
		Window:            15 * time.Minute,
		LockDuration:      15 * time.Minute,
	}
}

// InMemoryLockoutStore tracks failed-attempt metadata per identity.
type InMemoryLockoutStore struct {
	mu      sync.RWMutex
	policy  LockoutPolicy
	records map[string]*LockoutRecord
}

// NewInMemoryLockoutStore creates a lockout store with the given policy.
func NewInMemoryLockoutStore(policy LockoutPolicy) *InMemoryLockoutStore {
	return &InMemoryLockoutStore{
		policy:  policy,
		records: make(map[string]*LockoutRecord),
	}
}

// IsLocked reports whether the identity is currently hard-locked.
func (s *InMemoryLockoutStore) IsLocked(ctx context.Context, identifier string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[identifier]
	if !ok {
		return false, nil
	}
	return record.IsLockedAt(requestcontext.Now(ctx)), nil
}

// RecordFailure registers a failed attempt and applies the lock once the
// window threshold is crossed. Returns the updated record.
func (s *InMemoryLockoutStore) RecordFailure(ctx context.Context, identifier string) (*LockoutRecord, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[identifier]
	if !ok || now.Sub(record.FirstFailure) > s.policy.Window {
		record = &LockoutRecord{Identifier: identifier, FirstFailure: now}
		s.records[identifier] = record
	}
	record.FailureCount++
	record.LastFailureAt = now

	if record.FailureCount >= s.policy.AttemptsPerWindow {
		lockedUntil := now.Add(s.policy.LockDuration)
		record.LockedUntil = &lockedUntil
	}

	copied := *record
	return &copied, nil
}

// Clear drops attempt metadata after a successful verification.
func (s *InMemoryLockoutStore) Clear(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identifier)
	return nil
}
