// Package admission is the security boundary in front of every inbound
// request. The pipeline per request is fixed: origin check, then credential
// check, then feature-gated route resolution, then dispatch. Origin rejection
// is unconditional and precedes any identity work; a caller outside the
// allow-list is rejected even with perfect credentials. Each request gets a
// fresh evaluation; nothing here holds cross-request mutable state.
package admission

// Decision is the per-request admission outcome. Ephemeral: never persisted,
// it exists only for one request's evaluation and its audit record.
type Decision int

const (
	Allowed Decision = iota
	RejectedByOrigin
	RejectedByCredential
	RejectedByFeature
)

// String returns the audit label for the decision.
func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case RejectedByOrigin:
		return "rejected_origin"
	case RejectedByCredential:
		return "rejected_credential"
	case RejectedByFeature:
		return "rejected_feature"
	default:
		return "unknown"
	}
}
