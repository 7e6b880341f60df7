// Package prompt composes the system and user prompts sent to the completion service.
//
// Composition is a pure function of its inputs: the same profile, requirements,
// scenario and issues always produce byte-identical prompts.
package prompt

import (
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

// Purpose tells a client what a pair is for
type Purpose string

const (
	PurposeGenerate Purpose = "generate"
	PurposeCheck    Purpose = "check"
)

// Inputs are the structured values a pair was composed from. Clients that do
// not talk to a model, such as the offline client, render from these.
type Inputs struct {
	Purpose      Purpose
	Dialect      string
	Scenario     scenario.Spec
	Requirements requirement.Set
	Issues       []string
	Code         string
}

// Pair is one system/user prompt pair
type Pair struct {
	System string
	User   string
	Inputs Inputs
}

// Fingerprint returns a blake3 digest of the prompt text
func (p Pair) Fingerprint() string {
	hasher := blake3.New()
	_, _ = hasher.Write([]byte(p.System))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write([]byte(p.User))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// RepairHeader introduces the issues carried over from the previous verdict
const RepairHeader = "CRITICAL: fix exactly these issues identified in the previous code:"

var coverage = map[requirement.Tag]string{
	requirement.Responsive:    "Responsive design testing across viewports",
	requirement.Accessibility: "Accessibility checks (titles, alt text)",
	requirement.Interactive:   "Interactive element testing (clicks, hovers)",
	requirement.Forms:         "Form validation and submission testing",
}

// Composer builds prompt pairs. The zero value is ready to use.
type Composer struct{}

// Compose builds the generation prompt. A non-empty priorIssues turns it into
// a repair prompt listing every issue verbatim, in order.
func (Composer) Compose(profile dialect.Profile, reqs requirement.Set, spec scenario.Spec, priorIssues []string) Pair {
	tags := reqs.Sorted()
	issues := append([]string(nil), priorIssues...)

	var sys strings.Builder
	fmt.Fprintf(&sys, "You are a %s automation expert. Generate clean, serverless-ready %s test code using this EXACT structure.\n\n",
		profile.Framework(), profile.Framework())
	fmt.Fprintf(&sys, "The script MUST declare exactly this entry point: %s\n\n", profile.EntryPoint())

	if skeleton := profile.Skeleton(); skeleton != "" {
		sys.WriteString("REQUIRED STRUCTURE:\n")
		sys.WriteString(skeleton)
		sys.WriteString("\n\n")
	}

	sys.WriteString("RULES:\n")
	for i, rule := range profile.Rules() {
		fmt.Fprintf(&sys, "%d. %s\n", i+1, rule)
	}

	for _, tag := range tags {
		guidance := profile.Guidance(tag)
		if guidance == "" {
			continue
		}
		fmt.Fprintf(&sys, "\n%s (requested):\n%s\n", strings.ToUpper(tag.Label()), guidance)
	}

	if forbidden := profile.Forbidden(); len(forbidden) > 0 {
		sys.WriteString("\nFORBIDDEN (these primitives belong to other automation frameworks and must not appear):\n")
		for _, pattern := range forbidden {
			fmt.Fprintf(&sys, "- %s\n", pattern)
		}
	}

	if len(issues) > 0 {
		sys.WriteString("\n")
		sys.WriteString(RepairHeader)
		sys.WriteString("\n")
		writeIssues(&sys, issues)
		fmt.Fprintf(&sys, "\nGenerate improved, complete code that fixes every listed issue. Keep the %s structure.\n", profile.EntryPoint())
	}

	sys.WriteString("\nReturn ONLY the function code, no explanations.")

	var user strings.Builder
	fmt.Fprintf(&user, "Generate %s test code for:\n", profile.Framework())
	fmt.Fprintf(&user, "BASE_URL: %s\n", spec.URL())
	priority := spec.EffectivePriority()
	fmt.Fprintf(&user, "PRIORITY: %s (%s)\n", priority, priority.Describe())
	fmt.Fprintf(&user, "TEST_REQUIREMENTS: %s\n", requirementList(tags))
	fmt.Fprintf(&user, "\nTEST CASES:\n%s\n", spec.Narrative)

	if len(tags) > 0 {
		user.WriteString("\nInclude these test types based on requirements:\n")
		for _, tag := range tags {
			if line, ok := coverage[tag]; ok {
				fmt.Fprintf(&user, "- %s\n", line)
			}
		}
	}

	if spec.HasCredentials() {
		user.WriteString("\nAUTHENTICATION (use these literal credentials):\n")
		if steps := profile.Login(*spec.Credentials); steps != "" {
			user.WriteString(steps)
			user.WriteString("\n")
		} else {
			fmt.Fprintf(&user, "username: %s\npassword: %s\n", spec.Credentials.Username, spec.Credentials.Password)
		}
	}

	if len(issues) > 0 {
		user.WriteString("\nPreviously identified issues to fix:\n")
		writeIssues(&user, issues)
	}

	user.WriteString("\nGenerate clean, executable code following the exact structure provided.")

	return Pair{
		System: sys.String(),
		User:   user.String(),
		Inputs: Inputs{
			Purpose:      PurposeGenerate,
			Dialect:      profile.Name(),
			Scenario:     spec,
			Requirements: reqs,
			Issues:       issues,
		},
	}
}

// ComposeCheck builds the rubric prompt the service checker sends
func (Composer) ComposeCheck(profile dialect.Profile, code string, reqs requirement.Set, spec scenario.Spec) Pair {
	tags := reqs.Sorted()

	var sys strings.Builder
	fmt.Fprintf(&sys, "You are a %s code quality analyzer for serverless-ready test functions. ", profile.Framework())
	fmt.Fprintf(&sys, "Analyze the provided code that follows the %q pattern and determine if it's ready for use.\n\n", profile.EntryPoint())

	sys.WriteString("Check for:\n")
	for i, item := range profile.Rubric() {
		fmt.Fprintf(&sys, "%d. %s\n", i+1, item)
	}

	if forbidden := profile.Forbidden(); len(forbidden) > 0 {
		sys.WriteString("\nFlag any use of these primitives from other automation frameworks:\n")
		for _, pattern := range forbidden {
			fmt.Fprintf(&sys, "- %s\n", pattern)
		}
	}

	if exempt := profile.DoNotFlag(); len(exempt) > 0 {
		fmt.Fprintf(&sys, "\nThis is NOT a standard %s test file - it's a serverless function. Do NOT flag:\n", profile.Framework())
		for _, item := range exempt {
			fmt.Fprintf(&sys, "- %s\n", item)
		}
	}

	sys.WriteString(`
Respond with JSON in this exact format:
{
  "status": "ready" or "needs-update",
  "issues": ["issue 1", "issue 2"]
}

Include "issues" only when status is "needs-update", and list specific technical issues that need to be fixed.
If the code is ready, return {"status": "ready"}.
Reply with the JSON object only.`)

	var user strings.Builder
	fmt.Fprintf(&user, "Analyze this serverless %s function:\n\n", profile.Framework())
	user.WriteString("Original Requirements:\n")
	fmt.Fprintf(&user, "- Test Case: %s\n", spec.Narrative)
	fmt.Fprintf(&user, "- Base URL: %s\n", spec.URL())
	fmt.Fprintf(&user, "- Features: %s\n", requirementList(tags))
	fmt.Fprintf(&user, "\nGenerated Code:\n%s\n", code)
	user.WriteString("\nIs this serverless function ready for use or does it need updates?")

	return Pair{
		System: sys.String(),
		User:   user.String(),
		Inputs: Inputs{
			Purpose:      PurposeCheck,
			Dialect:      profile.Name(),
			Scenario:     spec,
			Requirements: reqs,
			Code:         code,
		},
	}
}

func writeIssues(b *strings.Builder, issues []string) {
	for _, issue := range issues {
		b.WriteString("- ")
		b.WriteString(issue)
		b.WriteString("\n")
	}
}

func requirementList(tags []requirement.Tag) string {
	if len(tags) == 0 {
		return "none"
	}
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = string(tag)
	}
	return strings.Join(names, ", ")
}
