package journal

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/scriptsmith/internal/session"
)

// Summary condenses the entries of one session
type Summary struct {
	SessionID string        `json:"session_id"`
	Started   time.Time     `json:"started"`
	Updated   time.Time     `json:"updated"`
	Dialect   string        `json:"dialect,omitempty"`
	Digest    string        `json:"digest,omitempty"`
	Cycles    int           `json:"cycles"`
	State     session.State `json:"state"`
	Issues    int           `json:"issues"`
	Failures  int           `json:"failures"`
}

// Summarize groups entries by session, newest session first
func Summarize(entries []*Entry) []Summary {
	byID := make(map[string]*Summary)
	for _, e := range entries {
		s, ok := byID[e.SessionID]
		if !ok {
			s = &Summary{SessionID: e.SessionID, Started: e.Timestamp, State: session.StateIdle}
			byID[e.SessionID] = s
		}
		if e.Timestamp.Before(s.Started) {
			s.Started = e.Timestamp
		}
		if e.Timestamp.After(s.Updated) {
			s.Updated = e.Timestamp
		}
		if e.Cycle > s.Cycles {
			s.Cycles = e.Cycle
		}

		switch e.Type {
		case EntryTransition:
			s.State = e.To
		case EntryArtifact:
			if rec, ok := e.Artifact(); ok {
				s.Dialect = rec.Dialect
				s.Digest = rec.Digest
			}
		case EntryVerdict:
			if v, ok := e.Verdict(); ok {
				s.Issues = len(v.Issues)
			}
		case EntryFailure:
			s.Failures++
		}
	}

	summaries := make([]Summary, 0, len(byID))
	for _, s := range byID {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Updated.Equal(summaries[j].Updated) {
			return summaries[i].SessionID < summaries[j].SessionID
		}
		return summaries[i].Updated.After(summaries[j].Updated)
	})
	return summaries
}
