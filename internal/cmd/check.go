package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/exitcode"
	"github.com/felixgeelhaar/scriptsmith/internal/tui"
)

type checkOptions struct {
	scenario  scenarioFlags
	narrative string
	checker   string
	json      bool
}

func newCheckCommand() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [script-file]",
		Short: "Check an existing script against the dialect's rubric",
		Long: `Check a script written earlier (or by hand) and print the verdict. The script
is read from the file argument, or from stdin when it is omitted or "-".

Exit status is 0 for ready and 8 for needs-update.`,
		Example: `  scriptsmith check login.js --scenario "sign in and open the dashboard"
  scriptsmith generate "search for shoes" | scriptsmith check --checker static`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return instrument(cmd, func(ctx context.Context) error {
				return runCheck(ctx, cmd, args, opts)
			})
		},
	}

	opts.scenario.register(cmd.Flags())
	cmd.Flags().StringVar(&opts.narrative, "scenario", "", "the scenario the script was written for")
	cmd.Flags().StringVar(&opts.checker, "checker", "", "checker: auto, service, offline, static")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the verdict as JSON")

	return cmd
}

func runCheck(ctx context.Context, cmd *cobra.Command, args []string, opts *checkOptions) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}
	if opts.scenario.file == "-" && source == "-" {
		return errors.New(errors.ErrCodeMissingPromptInputs, "the script and the scenario cannot both come from stdin")
	}
	code, err := readSource(source, rt.cc.Stdin)
	if err != nil {
		return err
	}

	var narrative []string
	if opts.narrative != "" {
		narrative = []string{opts.narrative}
	}

	// the scenario only gives the checker context, so it is not validated
	spec, err := opts.scenario.build(&CommandContext{Stdin: rt.cc.Stdin, Quiet: true}, narrative)
	if err != nil {
		return err
	}
	reqs := spec.Requirements()

	a, err := artifact.Interpret(code, rt.profile.Name(), spec, reqs, 1)
	if err != nil {
		return errors.New(errors.ErrCodeEmptyArtifact, "the script is empty").
			WithSuggestion("Pass a script file or pipe one on stdin")
	}

	client, err := rt.client(ctx)
	if err != nil {
		return err
	}
	chk, err := rt.checker(client, opts.checker)
	if err != nil {
		return err
	}
	rt.logger.Debug("checking script", "checker", chk.Name(), "digest", a.Digest)

	var verdict checker.Verdict
	err = rt.spin(ctx, "Checking quality", func(ctx context.Context) error {
		var checkErr error
		verdict, checkErr = chk.Check(ctx, a, spec, reqs)
		return checkErr
	})
	if err != nil {
		return err
	}

	if opts.json {
		if err := encodeJSON(rt.cc.Stdout, verdict); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(rt.cc.Stdout, tui.RenderVerdict(verdict, rt.styles))
	}

	if !verdict.Ready() {
		return fmt.Errorf("%w: %d issue(s)", exitcode.ErrNeedsUpdate, len(verdict.Issues))
	}
	return nil
}
