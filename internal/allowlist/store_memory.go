package allowlist

import (
	"bytes"
	"context"
	"net/netip"
	"sort"
	"sync"
	"sync/atomic"

	dErrors "chainsync/pkg/domain-errors"
)

// InMemoryStore is the authoritative runtime allow-list. Reads go through an
// immutable snapshot swapped atomically on every write: a committed Add or
// Remove is visible to the very next IsAllowed call, and no reader ever
// observes a partially-applied update.
type InMemoryStore struct {
	mu       sync.Mutex // serializes writers only
	entries  map[string]*Entry
	snapshot atomic.Pointer[membershipSnapshot]
}

// membershipSnapshot is a merged, sorted interval list over 16-byte address
// space. Merging at build time keeps the intervals disjoint, so membership is
// a single binary search regardless of set size.
type membershipSnapshot struct {
	starts [][16]byte
	ends   [][16]byte
}

// NewInMemoryStore creates an empty allow-list store.
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{entries: make(map[string]*Entry)}
	s.snapshot.Store(&membershipSnapshot{})
	return s
}

// IsAllowed reports whether the origin falls inside any recorded entry.
// An empty allow-list admits every origin: enforcement is opt-in.
// Read-only and deterministic over the current snapshot.
func (s *InMemoryStore) IsAllowed(_ context.Context, origin netip.Addr) (bool, error) {
	snap := s.snapshot.Load()
	if len(snap.starts) == 0 {
		return true, nil
	}
	return snap.contains(origin.Unmap().As16()), nil
}

// Enforcing reports whether any entries are recorded, i.e. whether IsAllowed
// actually gates anything.
func (s *InMemoryStore) Enforcing(_ context.Context) (bool, error) {
	return len(s.snapshot.Load().starts) > 0, nil
}

// Add records an entry. The write is complete once visible to the next read.
func (s *InMemoryStore) Add(_ context.Context, entry *Entry) error {
	if entry == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "allowlist entry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Origin] = entry
	s.snapshot.Store(buildSnapshot(s.entries))
	return nil
}

// Remove deletes the entry for the given canonical origin. Removing a missing
// origin is a no-op.
func (s *InMemoryStore) Remove(_ context.Context, origin string) error {
	prefix, err := ParseOrigin(origin)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, prefix.String())
	s.snapshot.Store(buildSnapshot(s.entries))
	return nil
}

// List returns the recorded entries in canonical-origin order.
func (s *InMemoryStore) List(_ context.Context) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Origin < out[j].Origin })
	return out, nil
}

func buildSnapshot(entries map[string]*Entry) *membershipSnapshot {
	type interval struct {
		start, end [16]byte
	}
	intervals := make([]interval, 0, len(entries))
	for _, e := range entries {
		intervals = append(intervals, interval{
			start: e.Prefix.Masked().Addr().As16(),
			end:   prefixLastAddr(e.Prefix),
		})
	}
	sort.Slice(intervals, func(i, j int) bool {
		return bytes.Compare(intervals[i].start[:], intervals[j].start[:]) < 0
	})

	snap := &membershipSnapshot{}
	for _, iv := range intervals {
		n := len(snap.ends)
		// Merge overlapping or adjacent intervals so lookups stay a single
		// binary search.
		if n > 0 && bytes.Compare(iv.start[:], snap.ends[n-1][:]) <= 0 {
			if bytes.Compare(iv.end[:], snap.ends[n-1][:]) > 0 {
				snap.ends[n-1] = iv.end
			}
			continue
		}
		snap.starts = append(snap.starts, iv.start)
		snap.ends = append(snap.ends, iv.end)
	}
	return snap
}

func (snap *membershipSnapshot) contains(addr [16]byte) bool {
	// Rightmost interval starting at or before addr.
	idx := sort.Search(len(snap.starts), func(i int) bool {
		return bytes.Compare(snap.starts[i][:], addr[:]) > 0
	}) - 1
	if idx < 0 {
		return false
	}
	return bytes.Compare(addr[:], snap.ends[idx][:]) <= 0
}

// prefixLastAddr returns the highest address covered by the prefix as a
// 16-byte value (IPv4 in its v4-mapped form, matching Addr.As16).
func prefixLastAddr(p netip.Prefix) [16]byte {
	out := p.Masked().Addr().As16()
	bits := p.Bits()
	if p.Addr().Is4() {
		bits += 96 // v4-mapped offset within the 16-byte space
	}
	for i := bits; i < 128; i++ {
		out[i/8] |= 1 << (7 - i%8)
	}
	return out
}
