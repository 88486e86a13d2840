package admission

import (
	"fmt"
	"net/http"
	"sync"

	"chainsync/internal/featureflag"
)

// route is a (pattern, required-flag, handler) triple. The required flag is
// fixed at registration for the route's lifetime; availability changes by
// toggling the flag, never by re-tagging the route.
type route struct {
	pattern      string
	requiredFlag string
	handler      http.Handler
}

// Registry maps route patterns to handlers, partitioned into always-on
// routes (no required flag) and flag-gated ones. Registration happens at
// startup; resolution is a pure function of the registered table and the
// flag snapshot passed in, so a flag flip mid-traffic takes effect on the
// very next resolution without touching the table.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]route
}

// NewRegistry creates an empty route registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]route)}
}

// Register adds an always-on route.
func (r *Registry) Register(pattern string, handler http.Handler) error {
	return r.register(pattern, handler, "")
}

// RegisterGated adds a route that is only routable while the named flag is
// open.
func (r *Registry) RegisterGated(pattern string, handler http.Handler, requiredFlag string) error {
	return r.register(pattern, handler, requiredFlag)
}

func (r *Registry) register(pattern string, handler http.Handler, requiredFlag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.routes[pattern]; exists {
		return fmt.Errorf("route %s already registered", pattern)
	}
	r.routes[pattern] = route{pattern: pattern, requiredFlag: requiredFlag, handler: handler}
	return nil
}

// Resolve looks up the handler for a path against the given flag snapshot.
// An unregistered path and a flag-closed path both return found=false: the
// two cases must be indistinguishable to callers so probing cannot reveal
// which features exist. gated reports whether a route exists but was closed
// by its flag - audit-only, never surfaced.
func (r *Registry) Resolve(path string, snap featureflag.Snapshot) (handler http.Handler, found bool, gated bool) {
	r.mu.RLock()
	rt, ok := r.routes[path]
	r.mu.RUnlock()
	if !ok {
		return nil, false, false
	}
	if rt.requiredFlag != "" && !snap.Enabled(rt.requiredFlag) {
		return nil, false, true
	}
	return rt.handler, true, false
}
