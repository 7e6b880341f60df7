package tui

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// RenderVerdict renders a verdict for the operator
func RenderVerdict(v checker.Verdict, s Styles) string {
	if v.Ready() {
		return s.Success.Render("✓ Ready") + " " + s.Muted.Render("the script passed the quality check")
	}

	var b strings.Builder
	b.WriteString(s.Warning.Render("⚠ Needs update"))
	b.WriteString("\n")
	for _, issue := range v.Issues {
		fmt.Fprintf(&b, "  • %s\n", issue)
	}
	return s.Border.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderMetadata renders the informational summary of an artifact
func RenderMetadata(a artifact.Artifact, s Styles) string {
	features := "none"
	if labels := a.Metadata.FeatureLabels(); len(labels) > 0 {
		features = strings.Join(labels, ", ")
	}

	rows := [][2]string{
		{"Dialect", a.Dialect},
		{"Cycle", fmt.Sprintf("%d", a.Cycle)},
		{"Estimated tests", fmt.Sprintf("%d", a.Metadata.EstimatedUnitCount)},
		{"Features", features},
		{"Priority", string(a.Metadata.Priority)},
		{"Digest", shortDigest(a.Digest)},
	}

	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", s.Key.Render(row[0]+":"), row[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderError renders an error with its code and suggestions
func RenderError(err error, s Styles) string {
	se, ok := errors.As(err)
	if !ok {
		return s.Error.Render("✗ Error: ") + err.Error()
	}

	var b strings.Builder
	b.WriteString(s.Error.Render(fmt.Sprintf("✗ [%s] ", se.Code)))
	b.WriteString(se.Message)
	if se.Cause != nil {
		fmt.Fprintf(&b, ": %v", se.Cause)
	}
	for _, suggestion := range se.Suggestions {
		fmt.Fprintf(&b, "\n  %s %s", s.Muted.Render("→"), suggestion)
	}
	return b.String()
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
