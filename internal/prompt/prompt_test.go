package prompt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

func loginScenario() scenario.Spec {
	return scenario.Spec{
		Narrative:   "test login form with mobile view",
		TargetURL:   "https://example.com/login",
		Credentials: &scenario.Credentials{Username: "alice", Password: "hunter2"},
		Priority:    scenario.PriorityHigh,
		Toggles:     requirement.NewSet(requirement.Forms),
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	var c Composer
	spec := loginScenario()
	reqs := spec.Requirements()
	issues := []string{"A", "B"}

	for _, profile := range dialect.Default().Profiles() {
		t.Run(profile.Name(), func(t *testing.T) {
			first := c.Compose(profile, reqs, spec, issues)
			for i := 0; i < 10; i++ {
				again := c.Compose(profile, spec.Requirements(), spec, []string{"A", "B"})
				if diff := cmp.Diff(first, again); diff != "" {
					t.Fatalf("Compose() not deterministic (-first +again):\n%s", diff)
				}
			}
			assert.Equal(t, first.Fingerprint(), c.Compose(profile, reqs, spec, issues).Fingerprint())
		})
	}
}

func TestComposeIncludesIssuesVerbatim(t *testing.T) {
	var c Composer
	profile := dialect.PlaywrightProfile()
	spec := loginScenario()
	issues := []string{
		"Missing console.log statements for better debugging",
		"Selector 'button.submit' has no fallback; use \"[type=submit]\" too",
	}

	pair := c.Compose(profile, spec.Requirements(), spec, issues)

	idx := strings.Index(pair.System, RepairHeader)
	require.GreaterOrEqual(t, idx, 0, "repair block missing")
	block := pair.System[idx:]
	first := strings.Index(block, "- "+issues[0]+"\n")
	second := strings.Index(block, "- "+issues[1]+"\n")
	assert.Greater(t, first, 0)
	assert.Greater(t, second, first, "issues must keep their order")
	assert.Contains(t, pair.User, "- "+issues[1])
	assert.Equal(t, issues, pair.Inputs.Issues)
}

func TestComposeWithoutIssuesHasNoRepairBlock(t *testing.T) {
	var c Composer
	spec := scenario.Spec{Narrative: "open the home page"}

	pair := c.Compose(dialect.PuppeteerProfile(), spec.Requirements(), spec, nil)

	assert.NotContains(t, pair.System, RepairHeader)
	assert.NotContains(t, pair.User, "Previously identified issues")
	assert.Contains(t, pair.User, "BASE_URL: "+scenario.PlaceholderURL)
	assert.Contains(t, pair.User, "TEST_REQUIREMENTS: none")
	assert.Contains(t, pair.User, "PRIORITY: medium")
	assert.Equal(t, PurposeGenerate, pair.Inputs.Purpose)
}

func TestComposeRendersRequirementsInVocabularyOrder(t *testing.T) {
	var c Composer
	spec := loginScenario()
	profile := dialect.PlaywrightProfile()

	pair := c.Compose(profile, spec.Requirements(), spec, nil)

	assert.Contains(t, pair.User, "TEST_REQUIREMENTS: responsive, forms\n")
	assert.Contains(t, pair.System, "RESPONSIVE TESTING (requested):")
	assert.Contains(t, pair.System, "FORM VALIDATION (requested):")
	assert.NotContains(t, pair.System, "ACCESSIBILITY CHECKS (requested):")
	assert.Less(t,
		strings.Index(pair.User, "Responsive design testing"),
		strings.Index(pair.User, "Form validation and submission testing"))
}

func TestComposeNamesEntryPointAndForbidden(t *testing.T) {
	var c Composer
	spec := scenario.Spec{Narrative: "click the buy button"}

	for _, profile := range dialect.Default().Profiles() {
		t.Run(profile.Name(), func(t *testing.T) {
			pair := c.Compose(profile, spec.Requirements(), spec, nil)

			assert.Contains(t, pair.System, "entry point: "+profile.EntryPoint())
			for _, pattern := range profile.Forbidden() {
				assert.Contains(t, pair.System, "- "+pattern+"\n")
			}
			assert.Equal(t, profile.Name(), pair.Inputs.Dialect)
		})
	}
}

func TestComposeInlinesCredentials(t *testing.T) {
	var c Composer
	spec := loginScenario()

	pair := c.Compose(dialect.PlaywrightProfile(), spec.Requirements(), spec, nil)

	assert.Contains(t, pair.User, "'alice'")
	assert.Contains(t, pair.User, "'hunter2'")
	assert.NotContains(t, pair.System, "hunter2")
}

func TestComposeCheck(t *testing.T) {
	var c Composer
	spec := loginScenario()
	profile := dialect.PuppeteerProfile()
	code := "async function runTest(page) { console.log('x'); }"

	pair := c.ComposeCheck(profile, code, spec.Requirements(), spec)

	for _, item := range profile.Rubric() {
		assert.Contains(t, pair.System, item)
	}
	for _, item := range profile.DoNotFlag() {
		assert.Contains(t, pair.System, item)
	}
	assert.Contains(t, pair.System, `"status": "ready" or "needs-update"`)
	assert.Contains(t, pair.User, code)
	assert.Contains(t, pair.User, "- Features: responsive, forms")
	assert.Equal(t, PurposeCheck, pair.Inputs.Purpose)
	assert.Equal(t, code, pair.Inputs.Code)
}

func TestFingerprint(t *testing.T) {
	a := Pair{System: "ab", User: "c"}
	b := Pair{System: "a", User: "bc"}

	assert.Len(t, a.Fingerprint(), 64)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Fingerprint(), Pair{System: "ab", User: "c", Inputs: Inputs{Dialect: "x"}}.Fingerprint())
}
