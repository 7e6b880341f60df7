package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
)

type promptOptions struct {
	scenario scenarioFlags
	issues   []string
	json     bool
}

func newPromptCommand() *cobra.Command {
	opts := &promptOptions{}

	cmd := &cobra.Command{
		Use:   "prompt [scenario...]",
		Short: "Print the prompts a generation would send",
		Long: `Print the system and user prompts composed for a scenario without calling any
backend. Pass --issue to preview a repair prompt.`,
		Example: `  scriptsmith prompt "check the checkout form" --require forms
  scriptsmith prompt "check the footer" --issue "Missing waits" --issue "No try/catch"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return instrument(cmd, func(ctx context.Context) error {
				return runPrompt(cmd, args, opts)
			})
		},
	}

	opts.scenario.register(cmd.Flags())
	cmd.Flags().StringArrayVar(&opts.issues, "issue", nil, "prior checker issue to fold into a repair prompt (repeatable)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the prompt pair as JSON")

	return cmd
}

type promptResult struct {
	System      string `json:"system"`
	User        string `json:"user"`
	Fingerprint string `json:"fingerprint"`
}

func runPrompt(cmd *cobra.Command, args []string, opts *promptOptions) error {
	rt, err := newRuntime(cmd, false)
	if err != nil {
		return err
	}

	spec, err := opts.scenario.build(rt.cc, args)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	pair := prompt.Composer{}.Compose(rt.profile, spec.Requirements(), spec, opts.issues)

	if opts.json {
		return encodeJSON(rt.cc.Stdout, promptResult{System: pair.System, User: pair.User, Fingerprint: pair.Fingerprint()})
	}

	fmt.Fprintln(rt.cc.Stdout, rt.styles.Title.Render("=== SYSTEM ==="))
	fmt.Fprintln(rt.cc.Stdout, pair.System)
	fmt.Fprintln(rt.cc.Stdout)
	fmt.Fprintln(rt.cc.Stdout, rt.styles.Title.Render("=== USER ==="))
	fmt.Fprintln(rt.cc.Stdout, pair.User)
	return nil
}
