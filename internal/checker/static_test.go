package checker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

func TestStaticCheckerPassesScaffolds(t *testing.T) {
	reg := dialect.Default()
	spec := scenario.Spec{
		Narrative:   "test login form with mobile view",
		TargetURL:   "https://example.com",
		Credentials: &scenario.Credentials{Username: "ann", Password: "it's"},
		Toggles:     requirement.NewSet(requirement.Accessibility, requirement.Interactive, requirement.Forms),
	}
	reqs := spec.Requirements()

	for _, profile := range reg.Profiles() {
		t.Run(profile.Name(), func(t *testing.T) {
			code, err := profile.Scaffold(dialect.NewScaffoldData(spec, reqs))
			require.NoError(t, err)

			a, err := artifact.Interpret(code, profile.Name(), spec, reqs, 1)
			require.NoError(t, err)

			v, err := NewStaticChecker(reg).Check(context.Background(), a, spec, reqs)
			require.NoError(t, err)
			assert.True(t, v.Ready(), "issues: %v", v.Issues)
		})
	}
}

func TestStaticCheckerDetectsDialectLeakage(t *testing.T) {
	code := `async function runTest(page) {
  try {
    await page.goto('https://example.com', { waitUntil: 'networkidle0' });
    await page.locator('h1').click();
    await page.waitForLoadState('networkidle');
    console.log('done');
  } catch (error) {
    throw error;
  }
}`
	issues := Inspect(dialect.PuppeteerProfile(), code)

	require.Len(t, issues, 2)
	assert.Contains(t, issues[0], "page.locator(")
	assert.Contains(t, issues[1], "waitForLoadState")
}

func TestInspect(t *testing.T) {
	profile := dialect.PlaywrightProfile()
	good := `async function runTest(page, expect) {
  try {
    await page.goto("https://example.com/{a}");
    await page.waitForLoadState('networkidle');
    // a stray ) in a comment
    /* and { in a block */
    console.log(` + "`done ${1}`" + `);
  } catch (error) {
    throw error;
  }
}`

	tests := []struct {
		name      string
		code      string
		wantIssue string
	}{
		{name: "clean", code: good},
		{name: "missing entry point", code: strings.Replace(good, "runTest(page, expect)", "main()", 1), wantIssue: "Missing entry point"},
		{name: "forbidden primitive", code: strings.Replace(good, "page.goto", "page.type(", 1), wantIssue: "page.type("},
		{name: "no wait", code: strings.Replace(good, "waitForLoadState", "reload", 1), wantIssue: "No wait primitive"},
		{name: "no progress marker", code: strings.Replace(good, "console.log", "print", 1), wantIssue: "console.log"},
		{name: "no try catch", code: strings.Replace(good, "catch", "finally", 1), wantIssue: "try/catch"},
		{name: "truncated", code: good[:strings.Index(good, "} catch")], wantIssue: "incomplete or truncated"},
		{name: "stray closer", code: good + ")", wantIssue: "unexpected"},
		{name: "open string", code: good + "'", wantIssue: "unterminated string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Inspect(profile, tt.code)

			if tt.wantIssue == "" {
				assert.Empty(t, issues)
				return
			}
			require.NotEmpty(t, issues)
			assert.Contains(t, strings.Join(issues, "\n"), tt.wantIssue)
		})
	}
}
