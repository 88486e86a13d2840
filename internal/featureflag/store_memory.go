package featureflag

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/requestcontext"
)

// InMemoryStore keeps flag state behind an atomically swapped copy-on-write
// map. Get never blocks on Set: readers load the current snapshot pointer,
// writers build a fresh map and swap it in, so the staleness window between a
// committed Set and the next Get is zero.
type InMemoryStore struct {
	mu       sync.Mutex // serializes writers only
	snapshot atomic.Pointer[Snapshot]
}

// NewInMemoryStore creates a store with no flags configured (everything
// resolves closed).
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{}
	empty := Snapshot{}
	s.snapshot.Store(&empty)
	return s
}

// Get returns the named flag's current state; unknown names resolve to a
// closed flag rather than an error.
func (s *InMemoryStore) Get(_ context.Context, name string) (Flag, error) {
	snap := *s.snapshot.Load()
	if flag, ok := snap[name]; ok {
		return flag, nil
	}
	return Flag{Name: name, Enabled: false}, nil
}

// Set records the named flag's state along with who changed it and when.
// Setting a flag to its current state is observably identical to a single
// toggle.
func (s *InMemoryStore) Set(ctx context.Context, name string, enabled bool, actor string) (Flag, error) {
	if name == "" {
		return Flag{}, dErrors.New(dErrors.CodeInvalidInput, "flag name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := *s.snapshot.Load()
	next := make(Snapshot, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	flag := Flag{
		Name:      name,
		Enabled:   enabled,
		UpdatedAt: requestcontext.Now(ctx),
		UpdatedBy: actor,
	}
	next[name] = flag
	s.snapshot.Store(&next)
	return flag, nil
}

// Snapshot returns the current immutable flag view. Callers must not mutate
// it; route resolution passes it around as a value.
func (s *InMemoryStore) Snapshot(_ context.Context) (Snapshot, error) {
	return *s.snapshot.Load(), nil
}

// List returns all configured flags sorted by name.
func (s *InMemoryStore) List(ctx context.Context) ([]Flag, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Flag, 0, len(snap))
	for _, flag := range snap {
		out = append(out, flag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
