// Package artifact turns raw completion text into a generated script.
package artifact

import (
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

// Metadata describes an artifact for display. It is informational only.
type Metadata struct {
	EstimatedUnitCount int               `json:"estimated_unit_count"`
	Features           []requirement.Tag `json:"features"`
	Priority           scenario.Priority `json:"priority"`
}

// FeatureLabels returns operator-facing labels for the features
func (m Metadata) FeatureLabels() []string {
	labels := make([]string, len(m.Features))
	for i, tag := range m.Features {
		labels[i] = tag.Label()
	}
	return labels
}

// Artifact is one generated script. A repair produces a new Artifact; an
// existing one is never edited.
type Artifact struct {
	Code     string   `json:"code"`
	Dialect  string   `json:"dialect"`
	Metadata Metadata `json:"metadata"`
	Cycle    int      `json:"cycle"`
	Digest   string   `json:"digest"`
}

// Empty reports whether there is any code to check
func (a Artifact) Empty() bool {
	return strings.TrimSpace(a.Code) == ""
}

// Interpret keeps any non-blank completion verbatim as the script. The code
// is never parsed; only blank output is rejected.
func Interpret(raw, dialect string, spec scenario.Spec, reqs requirement.Set, cycle int) (Artifact, error) {
	if strings.TrimSpace(raw) == "" {
		return Artifact{}, errors.New(errors.ErrCodeEmptyCompletion, "completion service returned no code").
			WithSuggestion("Retry the generation")
	}

	return Artifact{
		Code:    raw,
		Dialect: dialect,
		Metadata: Metadata{
			EstimatedUnitCount: spec.UnitCount(),
			Features:           reqs.Sorted(),
			Priority:           spec.EffectivePriority(),
		},
		Cycle:  cycle,
		Digest: Digest(raw),
	}, nil
}

// Digest returns the blake3 hex digest of the code
func Digest(code string) string {
	hasher := blake3.New()
	_, _ = hasher.Write([]byte(code))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
