// Package allowlist holds the set of network origins permitted to reach the
// gateway at all. Origin checks run before any credential work, so membership
// tests sit on the hot path of every request.
package allowlist

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "chainsync/pkg/domain-errors"
)

// Entry is one permitted origin: a single address or a CIDR range.
// Immutable once recorded; edits are remove-then-add.
type Entry struct {
	ID        uuid.UUID
	Origin    string // canonical form, e.g. "10.0.0.0/8" or "203.0.113.5"
	Prefix    netip.Prefix
	Reason    string
	CreatedAt time.Time
	CreatedBy string
}

// ParseOrigin normalizes an origin string into a prefix. Bare addresses
// become single-host prefixes so exact-match entries and ranges share one
// representation.
func ParseOrigin(origin string) (netip.Prefix, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return netip.Prefix{}, dErrors.New(dErrors.CodeInvalidInput, "origin is required")
	}

	if strings.Contains(origin, "/") {
		prefix, err := netip.ParsePrefix(origin)
		if err != nil {
			return netip.Prefix{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid CIDR range %q", origin))
		}
		return prefix.Masked(), nil
	}

	addr, err := netip.ParseAddr(origin)
	if err != nil {
		return netip.Prefix{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid address %q", origin))
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// NewEntry validates and builds an allow-list entry.
func NewEntry(origin, reason, createdBy string, now time.Time) (*Entry, error) {
	prefix, err := ParseOrigin(origin)
	if err != nil {
		return nil, err
	}
	return &Entry{
		ID:        uuid.New(),
		Origin:    prefix.String(),
		Prefix:    prefix,
		Reason:    reason,
		CreatedAt: now,
		CreatedBy: createdBy,
	}, nil
}
