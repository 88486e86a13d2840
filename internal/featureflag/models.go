// Package featureflag holds the runtime switches that decide which API
// surfaces are routable. The route registry consults the current snapshot on
// every resolution, so a toggle takes effect on the very next request.
package featureflag

import (
	"time"
)

// FlagAI gates the AI-powered API surface (/api/ai/*).
const FlagAI = "ai_enabled"

// Flag is a named boolean switch with an audit of its last change.
type Flag struct {
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// Snapshot is an immutable view of all flags at one instant. Unknown names
// resolve closed: an unrecognized flag must never accidentally open an
// endpoint.
type Snapshot map[string]Flag

// Enabled reports the state of the named flag, defaulting to closed.
func (s Snapshot) Enabled(name string) bool {
	flag, ok := s[name]
	return ok && flag.Enabled
}
