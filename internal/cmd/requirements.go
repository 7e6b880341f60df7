package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
)

type requirementsOptions struct {
	scenario scenarioFlags
	json     bool
}

func newRequirementsCommand() *cobra.Command {
	opts := &requirementsOptions{}

	cmd := &cobra.Command{
		Use:     "requirements [scenario...]",
		Aliases: []string{"reqs"},
		Short:   "Show the requirement tags detected in a scenario",
		Long: `Show which requirement tags a scenario triggers, merged with any --require
toggles. Toggles only add tags; they never remove detected ones.`,
		Example: `  scriptsmith requirements "test login form with mobile view"
  scriptsmith requirements "check the hero" --require accessibility`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return instrument(cmd, func(ctx context.Context) error {
				return runRequirements(cmd, args, opts)
			})
		},
	}

	opts.scenario.register(cmd.Flags())
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the tags as JSON")

	return cmd
}

type requirementEntry struct {
	Tag      requirement.Tag `json:"tag"`
	Label    string          `json:"label"`
	Detected bool            `json:"detected"`
	Matched  []string        `json:"matched,omitempty"`
}

// matchedTriggers lists the trigger words for tag that occur in narrative
func matchedTriggers(tag requirement.Tag, narrative string) []string {
	lower := strings.ToLower(narrative)
	var matched []string
	for _, trigger := range requirement.Triggers(tag) {
		if strings.Contains(lower, trigger) {
			matched = append(matched, trigger)
		}
	}
	return matched
}

func runRequirements(cmd *cobra.Command, args []string, opts *requirementsOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	spec, err := opts.scenario.build(cc, args)
	if err != nil {
		return err
	}

	detected := requirement.Extract(spec.Narrative, nil)
	entries := []requirementEntry{}
	for _, tag := range spec.Requirements().Sorted() {
		entry := requirementEntry{Tag: tag, Label: tag.Label(), Detected: detected.Has(tag)}
		if entry.Detected {
			entry.Matched = matchedTriggers(tag, spec.Narrative)
		}
		entries = append(entries, entry)
	}

	if opts.json {
		return encodeJSON(cc.Stdout, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cc.Stdout, "none")
		return nil
	}
	for _, e := range entries {
		source := "toggle"
		if e.Detected {
			source = "detected (" + strings.Join(e.Matched, ", ") + ")"
		}
		fmt.Fprintf(cc.Stdout, "%-14s %-22s %s\n", e.Tag, e.Label, source)
	}
	return nil
}
