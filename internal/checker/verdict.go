package checker

import (
	"encoding/json"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// Status is the checker's judgement of an artifact
type Status string

const (
	StatusReady       Status = "ready"
	StatusNeedsUpdate Status = "needs-update"
)

// Verdict is the result of one quality check. Ready holds exactly when
// Issues is empty; use NewVerdict or ParseVerdict to build one.
type Verdict struct {
	Status Status   `json:"status"`
	Issues []string `json:"issues,omitempty"`
}

// NewVerdict derives the status from the issue list
func NewVerdict(issues []string) Verdict {
	if len(issues) == 0 {
		return Verdict{Status: StatusReady}
	}
	return Verdict{Status: StatusNeedsUpdate, Issues: append([]string(nil), issues...)}
}

// Ready reports whether the artifact passed
func (v Verdict) Ready() bool {
	return v.Status == StatusReady && len(v.Issues) == 0
}

// verdictSchema is the only reply shape accepted from a checker backend
var verdictSchema = openapi3.NewObjectSchema().
	WithProperty("status", openapi3.NewStringSchema().WithEnum(string(StatusReady), string(StatusNeedsUpdate))).
	WithProperty("issues", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema().WithMinLength(1))).
	WithRequired([]string{"status"}).
	WithoutAdditionalProperties()

// ParseVerdict validates a checker reply. Anything that is not a
// well-formed verdict is an interpretation error and never reads as ready.
func ParseVerdict(content string) (Verdict, error) {
	var doc any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &doc); err != nil {
		return Verdict{}, errors.Wrap(errors.ErrCodeVerdictNotJSON, "checker reply is not JSON", err).
			WithSuggestion("Run the check again, or use --checker static")
	}

	if err := verdictSchema.VisitJSON(doc); err != nil {
		return Verdict{}, errors.Wrap(errors.ErrCodeVerdictSchema, "checker reply does not match the verdict schema", err)
	}

	obj := doc.(map[string]any)
	status := Status(obj["status"].(string))

	var issues []string
	if raw, ok := obj["issues"].([]any); ok {
		for _, item := range raw {
			issue := item.(string)
			if strings.TrimSpace(issue) == "" {
				return Verdict{}, errors.New(errors.ErrCodeVerdictSchema, "checker reply contains a blank issue")
			}
			issues = append(issues, issue)
		}
	}

	switch {
	case status == StatusReady && len(issues) > 0:
		return Verdict{}, errors.New(errors.ErrCodeVerdictInvariant, "checker reported ready with outstanding issues")
	case status == StatusNeedsUpdate && len(issues) == 0:
		return Verdict{}, errors.New(errors.ErrCodeVerdictInvariant, "checker reported needs-update without any issues")
	}

	return NewVerdict(issues), nil
}
