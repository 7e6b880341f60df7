package session

import (
	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/checker"
)

// EventKind identifies what an Event reports
type EventKind string

const (
	EventTransition EventKind = "transition"
	EventArtifact   EventKind = "artifact"
	EventVerdict    EventKind = "verdict"
	EventFailure    EventKind = "failure"
)

// Event is a notification delivered to observers. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind      EventKind
	SessionID string
	Cycle     int

	From State
	To   State

	Artifact *artifact.Artifact
	Verdict  *checker.Verdict
	Err      error
}

// Observer receives session events. OnEvent is called synchronously from
// the goroutine running the operation and must not call back into
// operations on the same controller.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Event)

// OnEvent implements Observer
func (f ObserverFunc) OnEvent(e Event) { f(e) }
