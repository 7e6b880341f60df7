package tui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
	"github.com/felixgeelhaar/scriptsmith/internal/session"
)

func TestRenderVerdict(t *testing.T) {
	s := PlainStyles()

	assert.Contains(t, RenderVerdict(checker.NewVerdict(nil), s), "Ready")

	out := RenderVerdict(checker.NewVerdict([]string{"Missing waits", "No try/catch"}), s)
	assert.Contains(t, out, "Needs update")
	assert.Contains(t, out, "• Missing waits")
	assert.Contains(t, out, "• No try/catch")
}

func TestRenderMetadata(t *testing.T) {
	a := artifact.Artifact{
		Dialect: "playwright",
		Cycle:   2,
		Digest:  strings.Repeat("a", 64),
		Metadata: artifact.Metadata{
			EstimatedUnitCount: 3,
			Features:           []requirement.Tag{requirement.Responsive, requirement.Forms},
			Priority:           scenario.PriorityHigh,
		},
	}

	out := RenderMetadata(a, PlainStyles())
	assert.Contains(t, out, "Dialect: playwright")
	assert.Contains(t, out, "Cycle: 2")
	assert.Contains(t, out, "Estimated tests: 3")
	assert.Contains(t, out, "Features: Responsive Testing, Form Validation")
	assert.Contains(t, out, "Priority: high")
	assert.True(t, strings.HasSuffix(out, "Digest: aaaaaaaaaaaa"))

	a.Metadata.Features = nil
	assert.Contains(t, RenderMetadata(a, PlainStyles()), "Features: none")
}

func TestRenderError(t *testing.T) {
	out := RenderError(errors.NewServiceAuthError("openai"), PlainStyles())
	assert.Contains(t, out, "[SERVICE-005]")
	assert.Contains(t, out, "OPENAI_API_KEY")

	assert.Contains(t, RenderError(fmt.Errorf("plain"), PlainStyles()), "Error: plain")
}

func TestReporter(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out, PlainStyles())

	r.OnEvent(session.Event{Kind: session.EventTransition, To: session.StateGenerating})
	r.OnEvent(session.Event{Kind: session.EventTransition, To: session.StateGenerated})
	r.OnEvent(session.Event{Kind: session.EventTransition, To: session.StateRepairing, Cycle: 3})
	r.OnEvent(session.Event{Kind: session.EventVerdict, Verdict: &checker.Verdict{Status: checker.StatusReady}})
	r.OnEvent(session.Event{Kind: session.EventFailure, Err: errors.New(errors.ErrCodeVerdictNotJSON, "not json")})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"→ Generating script",
		"→ Repairing script (cycle 3)",
		"✓ Ready the script passed the quality check",
		"✗ [INTERPRET-002] not json",
	}, lines)
}
