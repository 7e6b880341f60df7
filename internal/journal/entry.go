package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/session"
)

// EntryType represents the type of journal entry
type EntryType string

const (
	// EntryTransition records a state change
	EntryTransition EntryType = "transition"

	// EntryArtifact records a new script. Only its digest and metadata are
	// kept; the code may embed login credentials.
	EntryArtifact EntryType = "artifact"

	// EntryVerdict records a checker verdict
	EntryVerdict EntryType = "verdict"

	// EntryFailure records a failed operation
	EntryFailure EntryType = "failure"
)

// Entry is one line of the journal
type Entry struct {
	ID        string         `json:"id"`
	Type      EntryType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Cycle     int            `json:"cycle"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	From      session.State  `json:"from,omitempty"`
	To        session.State  `json:"to,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// ArtifactRecord is the credential-free part of an artifact
type ArtifactRecord struct {
	Dialect  string            `json:"dialect"`
	Digest   string            `json:"digest"`
	Metadata artifact.Metadata `json:"metadata"`
}

// NewEntry creates an entry with common fields populated
func NewEntry(t EntryType, sessionID string, cycle int, message string) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Cycle:     cycle,
		Level:     inferLevel(t),
		Message:   message,
	}
}

// WithData adds data to the entry
func (e *Entry) WithData(key string, value any) *Entry {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// WithError sets the error field
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.Error = err.Error()
		e.Level = "error"
	}
	return e
}

// FromEvent converts a session event. It returns nil for events that carry
// nothing worth keeping.
func FromEvent(ev session.Event) *Entry {
	switch ev.Kind {
	case session.EventTransition:
		e := NewEntry(EntryTransition, ev.SessionID, ev.Cycle, string(ev.From)+" -> "+string(ev.To))
		e.From, e.To = ev.From, ev.To
		return e
	case session.EventArtifact:
		if ev.Artifact == nil {
			return nil
		}
		return NewEntry(EntryArtifact, ev.SessionID, ev.Cycle, "script generated").
			WithData("artifact", recordOf(*ev.Artifact))
	case session.EventVerdict:
		if ev.Verdict == nil {
			return nil
		}
		return NewEntry(EntryVerdict, ev.SessionID, ev.Cycle, "verdict "+string(ev.Verdict.Status)).
			WithData("verdict", *ev.Verdict)
	case session.EventFailure:
		return NewEntry(EntryFailure, ev.SessionID, ev.Cycle, "operation failed").
			WithData("state", string(ev.To)).
			WithError(ev.Err)
	}
	return nil
}

func recordOf(a artifact.Artifact) ArtifactRecord {
	return ArtifactRecord{Dialect: a.Dialect, Digest: a.Digest, Metadata: a.Metadata}
}

// Verdict decodes the verdict carried by a verdict entry read back from disk
func (e *Entry) Verdict() (checker.Verdict, bool) {
	var v checker.Verdict
	return v, e.decode("verdict", &v)
}

// Artifact decodes the artifact record carried by an artifact entry
func (e *Entry) Artifact() (ArtifactRecord, bool) {
	var r ArtifactRecord
	return r, e.decode("artifact", &r)
}

// decode round-trips a data field through JSON so entries read from disk and
// entries built in memory decode the same way
func (e *Entry) decode(key string, dst any) bool {
	raw, ok := e.Data[key]
	if !ok {
		return false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func inferLevel(t EntryType) string {
	if t == EntryFailure {
		return "error"
	}
	return "info"
}
