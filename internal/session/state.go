// Package session drives one generate, check and repair conversation.
package session

// State is a point in the session lifecycle
type State string

const (
	StateIdle        State = "idle"
	StateGenerating  State = "generating"
	StateGenerated   State = "generated"
	StateChecking    State = "checking"
	StateReady       State = "ready"
	StateNeedsUpdate State = "needs-update"
	StateRepairing   State = "repairing"
)

// Busy reports whether a request is outstanding in this state
func (s State) Busy() bool {
	return s == StateGenerating || s == StateChecking || s == StateRepairing
}

// HasArtifact reports whether the state holds a generated artifact
func (s State) HasArtifact() bool {
	return s == StateGenerated || s == StateReady || s == StateNeedsUpdate
}

func (s State) oneOf(states ...State) bool {
	for _, other := range states {
		if s == other {
			return true
		}
	}
	return false
}
