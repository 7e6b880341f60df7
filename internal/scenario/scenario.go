// Package scenario holds the operator's test scenario for one generation cycle.
package scenario

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
)

// PlaceholderURL is rendered when the operator gives no target URL
const PlaceholderURL = "https://your-app.com"

// Priority steers how thorough the generated test should be
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a priority name; empty means medium
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case "", PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidPriority, fmt.Sprintf("invalid priority: %q", s)).
			WithSuggestion("Use one of: low, medium, high")
	}
}

// Describe returns the operator-facing meaning of the priority
func (p Priority) Describe() string {
	switch p {
	case PriorityLow:
		return "Basic functionality"
	case PriorityHigh:
		return "Comprehensive testing"
	default:
		return "Standard testing"
	}
}

// Credentials are literal fill values for a login step
type Credentials struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// String keeps the password out of logs and error messages
func (c Credentials) String() string {
	return fmt.Sprintf("%s:***", c.Username)
}

// Spec is the operator's scenario. It is treated as immutable for a cycle;
// a new scenario replaces the whole value.
type Spec struct {
	Narrative   string
	TargetURL   string
	Credentials *Credentials
	Priority    Priority
	Toggles     requirement.Set
}

// Validate rejects a scenario before any external call is made
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Narrative) == "" {
		return errors.NewNarrativeRequiredError()
	}

	if _, err := ParsePriority(string(s.Priority)); err != nil {
		return err
	}

	if u := strings.TrimSpace(s.TargetURL); u != "" {
		parsed, err := url.Parse(u)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return errors.New(errors.ErrCodeInvalidURL, fmt.Sprintf("target URL must be an absolute http(s) URL: %q", s.TargetURL)).
				WithSuggestion("Use a URL such as https://example.com/login")
		}
	}

	if c := s.Credentials; c != nil {
		if (c.Username == "") != (c.Password == "") {
			return errors.New(errors.ErrCodeIncompleteCreds, "credentials need both a username and a password").
				WithSuggestion("Provide both --username and --password, or neither")
		}
	}

	return nil
}

// URL returns the target URL or the placeholder when none was given
func (s Spec) URL() string {
	if u := strings.TrimSpace(s.TargetURL); u != "" {
		return u
	}
	return PlaceholderURL
}

// EffectivePriority returns the priority with the medium default applied
func (s Spec) EffectivePriority() Priority {
	p, err := ParsePriority(string(s.Priority))
	if err != nil {
		return PriorityMedium
	}
	return p
}

// HasCredentials reports whether a login step should be generated
func (s Spec) HasCredentials() bool {
	return s.Credentials != nil && s.Credentials.Username != "" && s.Credentials.Password != ""
}

// Requirements derives the requirement set for this scenario
func (s Spec) Requirements() requirement.Set {
	return requirement.Extract(s.Narrative, s.Toggles)
}

// UnitCount counts the sentence-terminated clauses of the narrative.
// It is an informational estimate only.
func (s Spec) UnitCount() int {
	n := 0
	for _, clause := range strings.FieldsFunc(s.Narrative, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(clause) != "" {
			n++
		}
	}
	return n
}
