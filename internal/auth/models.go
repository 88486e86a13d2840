// Package auth verifies presented identities and issues session tokens. The
// gateway calls Verify only after the origin check has passed; that ordering
// is owned by the admission gate, not here.
package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Verification failure variants. UnknownIdentity and BadSecret must be
// indistinguishable in the caller-visible response; handlers collapse both to
// a generic auth failure while logging the variant internally.
var (
	ErrUnknownIdentity = errors.New("unknown identity")
	ErrBadSecret       = errors.New("bad secret")
	ErrAccountLocked   = errors.New("account locked")
)

// User is a stored principal. PasswordHash holds the bcrypt derivation; the
// plaintext secret is never persisted or logged.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal identifies a successfully verified caller.
type Principal struct {
	ID       uuid.UUID
	Username string
}

// LockoutRecord is the attempt metadata the verifier keeps per identity.
// The gateway exposes it; retry/backoff policy layers on top.
type LockoutRecord struct {
	Identifier    string
	FailureCount  int
	FirstFailure  time.Time
	LastFailureAt time.Time
	LockedUntil   *time.Time
}

// IsLockedAt reports whether the record holds a hard lock at the given time.
func (r *LockoutRecord) IsLockedAt(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}
