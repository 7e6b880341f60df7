package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

func TestInterpretKeepsCodeVerbatim(t *testing.T) {
	raw := "```javascript\nasync function runTest(page, expect) {\n}\n```\n"
	spec := scenario.Spec{Narrative: "Open the page. Click login! Works?", Priority: scenario.PriorityHigh}
	reqs := requirement.NewSet(requirement.Forms, requirement.Responsive)

	a, err := Interpret(raw, "playwright", spec, reqs, 2)
	require.NoError(t, err)

	assert.Equal(t, raw, a.Code)
	assert.Equal(t, "playwright", a.Dialect)
	assert.Equal(t, 2, a.Cycle)
	assert.Equal(t, 3, a.Metadata.EstimatedUnitCount)
	assert.Equal(t, []requirement.Tag{requirement.Responsive, requirement.Forms}, a.Metadata.Features)
	assert.Equal(t, []string{"Responsive Testing", "Form Validation"}, a.Metadata.FeatureLabels())
	assert.Equal(t, scenario.PriorityHigh, a.Metadata.Priority)
	assert.Equal(t, Digest(raw), a.Digest)
	assert.False(t, a.Empty())
}

func TestInterpretRejectsBlank(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\n"} {
		_, err := Interpret(raw, "puppeteer", scenario.Spec{Narrative: "x"}, requirement.NewSet(), 1)

		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyCompletion))
		assert.True(t, errors.IsKind(err, errors.KindInterpretation))
	}
}

func TestInterpretDefaultsPriority(t *testing.T) {
	a, err := Interpret("code", "playwright", scenario.Spec{Narrative: "x"}, nil, 1)
	require.NoError(t, err)

	assert.Equal(t, scenario.PriorityMedium, a.Metadata.Priority)
	assert.Empty(t, a.Metadata.Features)
}

func TestDigest(t *testing.T) {
	assert.Len(t, Digest("a"), 64)
	assert.Equal(t, Digest("a"), Digest("a"))
	assert.NotEqual(t, Digest("a"), Digest("b"))
	assert.True(t, Artifact{Code: " \n"}.Empty())
}
