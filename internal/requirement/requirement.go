// Package requirement derives the capability tags that steer prompt content
// from a scenario narrative and the operator's explicit toggles.
package requirement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// Tag is a normalized capability keyword
type Tag string

const (
	Responsive    Tag = "responsive"
	Accessibility Tag = "accessibility"
	Interactive   Tag = "interactive"
	Forms         Tag = "forms"
)

// Vocabulary is the fixed tag vocabulary in rendering order
var Vocabulary = []Tag{Responsive, Accessibility, Interactive, Forms}

// triggers maps each tag to the substrings that detect it in lower-cased narrative text
var triggers = map[Tag][]string{
	Responsive:    {"responsive", "mobile", "tablet"},
	Accessibility: {"accessibility", "a11y", "alt text"},
	Interactive:   {"click", "interact", "button"},
	Forms:         {"form", "submit", "input"},
}

// Triggers returns the detection substrings for tag
func Triggers(tag Tag) []string {
	return append([]string(nil), triggers[tag]...)
}

// Label is the human-readable name shown in metadata
func (t Tag) Label() string {
	switch t {
	case Responsive:
		return "Responsive Testing"
	case Accessibility:
		return "Accessibility Checks"
	case Interactive:
		return "Interactive Elements"
	case Forms:
		return "Form Validation"
	default:
		return string(t)
	}
}

// ParseTag validates a tag name against the vocabulary
func ParseTag(s string) (Tag, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range Vocabulary {
		if string(t) == name {
			return t, nil
		}
	}
	return "", errors.New(errors.ErrCodeUnknownTag, fmt.Sprintf("unknown requirement tag: %q", s)).
		WithSuggestion("Use one of: responsive, accessibility, interactive, forms")
}

// ParseTags parses every name into a Set, failing on the first unknown one
func ParseTags(names []string) (Set, error) {
	set := NewSet()
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		t, err := ParseTag(n)
		if err != nil {
			return nil, err
		}
		set.Add(t)
	}
	return set, nil
}

// Set is an unordered set of tags
type Set map[Tag]struct{}

// NewSet returns a set holding tags
func NewSet(tags ...Tag) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts tag
func (s Set) Add(tag Tag) {
	s[tag] = struct{}{}
}

// Has reports whether tag is present
func (s Set) Has(tag Tag) bool {
	_, ok := s[tag]
	return ok
}

// Len is the number of tags present
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set with the tags of s and other
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for t := range s {
		out.Add(t)
	}
	for t := range other {
		out.Add(t)
	}
	return out
}

// Equal reports whether both sets hold the same tags
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// Sorted returns the tags in vocabulary order, followed by any
// out-of-vocabulary tags in lexical order. Map order never leaks into prompts.
func (s Set) Sorted() []Tag {
	out := make([]Tag, 0, len(s))
	for _, t := range Vocabulary {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	var extra []string
	for t := range s {
		if _, known := triggers[t]; !known {
			extra = append(extra, string(t))
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		for _, e := range extra {
			out = append(out, Tag(e))
		}
	}
	return out
}

// Strings returns Sorted as plain strings
func (s Set) Strings() []string {
	tags := s.Sorted()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

// String renders the set as a comma-joined list
func (s Set) String() string {
	return strings.Join(s.Strings(), ", ")
}

// Extract detects tags in narrative and unions them with toggles.
// A toggled tag is always present; toggles never suppress detection.
func Extract(narrative string, toggles Set) Set {
	text := strings.ToLower(narrative)
	out := NewSet()
	for _, tag := range Vocabulary {
		for _, trigger := range triggers[tag] {
			if strings.Contains(text, trigger) {
				out.Add(tag)
				break
			}
		}
	}
	return out.Union(toggles)
}
