package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
)

// AskNarrative asks for the test scenario when none was given on the
// command line
func AskNarrative() (string, error) {
	var narrative string

	form := huh.NewForm(huh.NewGroup(narrativeField(&narrative)))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return strings.TrimSpace(narrative), nil
}

func narrativeField(value *string) *huh.Text {
	return huh.NewText().
		Title("Describe the test scenario").
		Placeholder("Open the login page, sign in and verify the dashboard greets the user").
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("a scenario is required")
			}
			return nil
		}).
		Value(value)
}

// ApproveRepair shows the checker's issues and asks whether to regenerate
func ApproveRepair(issues []string) (bool, error) {
	approved := true

	form := huh.NewForm(huh.NewGroup(repairField(issues, &approved)))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return approved, nil
}

func repairField(issues []string, value *bool) *huh.Confirm {
	return huh.NewConfirm().
		Title("The script needs updates. Regenerate with these fixes?").
		Description(bullets(issues)).
		Affirmative("Repair").
		Negative("Keep current").
		Value(value)
}

// ChooseRequirements lets the operator toggle requirement tags. Tags in
// preselected start checked.
func ChooseRequirements(preselected requirement.Set) ([]requirement.Tag, error) {
	var selected []requirement.Tag

	form := huh.NewForm(huh.NewGroup(requirementField(preselected, &selected)))
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}

func requirementField(preselected requirement.Set, value *[]requirement.Tag) *huh.MultiSelect[requirement.Tag] {
	options := make([]huh.Option[requirement.Tag], len(requirement.Vocabulary))
	for i, tag := range requirement.Vocabulary {
		options[i] = huh.NewOption(tag.Label(), tag).Selected(preselected.Has(tag))
	}

	return huh.NewMultiSelect[requirement.Tag]().
		Title("Test requirements").
		Options(options...).
		Value(value)
}

// Recovery choices offered after a failed step
const (
	RecoverRetry   = "retry"
	RecoverOffline = "offline"
)

// ChooseRecovery asks how to continue after a step failed. An empty result
// means the operator gave up.
func ChooseRecovery(step string, cause error, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	var selected string
	form := huh.NewForm(huh.NewGroup(recoveryField(step, cause, options, &selected)))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}

func recoveryField(step string, cause error, options []string, value *string) *huh.Select[string] {
	labels := map[string]string{
		RecoverRetry:   "retry " + step,
		RecoverOffline: "switch to the offline backend and static checker",
	}

	huhOptions := make([]huh.Option[string], 0, len(options)+1)
	for _, opt := range options {
		label, ok := labels[opt]
		if !ok {
			label = opt
		}
		huhOptions = append(huhOptions, huh.NewOption(label, opt))
	}
	huhOptions = append(huhOptions, huh.NewOption("give up", ""))

	return huh.NewSelect[string]().
		Title(fmt.Sprintf("The %s step failed. What next?", step)).
		Description(cause.Error()).
		Options(huhOptions...).
		Value(value)
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	if inCI() {
		return false
	}
	return IsInteractive()
}

func inCI() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}
	return false
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}
