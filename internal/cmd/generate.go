package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/exitcode"
	"github.com/felixgeelhaar/scriptsmith/internal/journal"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
	"github.com/felixgeelhaar/scriptsmith/internal/session"
	"github.com/felixgeelhaar/scriptsmith/internal/tui"
)

type generateOptions struct {
	scenario   scenarioFlags
	checker    string
	autoRepair int
	retries    int
	output     string
	json       bool
	journal    bool
}

func newGenerateCommand() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [scenario...]",
		Short: "Generate and check a browser automation script",
		Long: `Generate a browser automation function from a plain-language scenario, check
it against the dialect's rubric and offer repairs while the checker reports
issues. Repairs need approval: answer the prompt, or pass --auto-repair N to
approve up to N repairs ahead of time.

When a backend or checker call fails, the failed step can be retried on its
own (a failed check never regenerates the script), or the session can switch
to the offline backend. Pass --retries N to retry up to N times without asking.

Exit status is 0 when the final verdict is ready and 8 when it still needs
updates.`,
		Example: `  scriptsmith generate "open the pricing page and check the plans on mobile"
  scriptsmith generate -f scenario.txt --url https://staging.example.com --require forms
  scriptsmith generate --dialect puppeteer --backend offline --checker static "sign up"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return instrument(cmd, func(ctx context.Context) error {
				return runGenerate(ctx, cmd, args, opts)
			})
		},
	}

	opts.scenario.register(cmd.Flags())
	cmd.Flags().StringVar(&opts.checker, "checker", "", "checker: auto, service, offline, static")
	cmd.Flags().IntVar(&opts.autoRepair, "auto-repair", 0, "approve up to N repairs without asking")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "retry a failed step up to N times without asking")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the script to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the session result as JSON")
	cmd.Flags().BoolVar(&opts.journal, "journal", false, "record the session in the journal (see 'scriptsmith history')")

	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, args []string, opts *generateOptions) error {
	rt, err := newRuntime(cmd, true)
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

	client, err := rt.client(ctx)
	if err != nil {
		return err
	}
	chk, err := rt.checker(client, opts.checker)
	if err != nil {
		return err
	}

	var observers []session.Observer
	if !rt.cc.Quiet {
		observers = append(observers, tui.NewReporter(rt.cc.Stderr, rt.styles))
	}
	if opts.journal || rt.cfg.Journal.Enabled {
		j, err := journal.Open(journal.DefaultConfig(rt.cfg.JournalDir()))
		if err != nil {
			return err
		}
		defer j.Close()
		if c := spec.Credentials; c != nil {
			j.Mask(c.Username, c.Password)
		}
		j.OnError = func(err error) { rt.logger.WithError(err).Warn("journal write failed") }
		observers = append(observers, j)
		rt.logger.Debug("journaling session", "path", j.Path())
	}

	ctrl, err := session.New(session.Config{
		Dialect:   rt.profile,
		Client:    client,
		Checker:   chk,
		Logger:    rt.logger,
		Observers: observers,
	})
	if err != nil {
		return err
	}

	g := &generation{ctrl: ctrl, client: client, spec: spec, retries: opts.retries}

	snap, err := rt.drive(ctx, "Generating script", g.submit)
	if snap, err = rt.recover(ctx, g, snap, err); err != nil {
		return rt.finish(snap, opts, err)
	}

	for repairs := 0; snap.State == session.StateNeedsUpdate; repairs++ {
		approved, err := rt.approveRepair(snap, repairs, opts.autoRepair)
		if err != nil {
			return err
		}
		if !approved {
			break
		}

		snap, err = rt.drive(ctx, fmt.Sprintf("Repairing script (cycle %d)", snap.Cycle+1), ctrl.Repair)
		if snap, err = rt.recover(ctx, g, snap, err); err != nil {
			return rt.finish(snap, opts, err)
		}
	}

	return rt.finish(snap, opts, nil)
}

// generation is what a failed step needs to be retried
type generation struct {
	ctrl    *session.Controller
	client  provider.GenerationClient
	spec    scenario.Spec
	retries int
}

func (g *generation) submit(ctx context.Context) (session.Snapshot, error) {
	return g.ctrl.Submit(ctx, g.spec)
}

// step names the operation that failed from the state it left behind and
// returns the call that retries it
func (g *generation) step(state session.State) (string, func(context.Context) (session.Snapshot, error)) {
	switch state {
	case session.StateGenerated:
		return "check", g.ctrl.Recheck
	case session.StateNeedsUpdate:
		return "repair", g.ctrl.Repair
	default:
		return "generation", g.submit
	}
}

func (g *generation) canFallBack(cause error) bool {
	return errors.IsKind(cause, errors.KindService) && g.client.Name() != string(provider.BackendOffline)
}

func (g *generation) fallBack(reg *dialect.Registry) error {
	offline := provider.WithTelemetry(provider.NewOfflineClient(reg))
	if err := g.ctrl.Fallback(offline, checker.NewStaticChecker(reg)); err != nil {
		return err
	}
	g.client = offline
	return nil
}

// recover retries a failed step until it succeeds or the operator gives up.
// Only service and interpretation failures are retried, and never without
// an answer or a --retries budget.
func (r *runtime) recover(ctx context.Context, g *generation, snap session.Snapshot, cause error) (session.Snapshot, error) {
	for cause != nil {
		if ctx.Err() != nil || !(errors.IsKind(cause, errors.KindService) || errors.IsKind(cause, errors.KindInterpretation)) {
			return snap, cause
		}

		step, retry := g.step(snap.State)
		switch r.chooseRecovery(g, step, cause) {
		case tui.RecoverRetry:
		case tui.RecoverOffline:
			if err := g.fallBack(r.registry); err != nil {
				r.logger.WithError(err).Warn("fallback failed")
				return snap, cause
			}
		default:
			return snap, cause
		}

		snap, cause = r.drive(ctx, "Retrying "+step, retry)
	}
	return snap, nil
}

func (r *runtime) chooseRecovery(g *generation, step string, cause error) string {
	if g.retries > 0 {
		g.retries--
		r.logger.WithError(cause).Info("retrying failed step", "step", step, "retries_left", g.retries)
		return tui.RecoverRetry
	}
	if !r.cc.Interactive() {
		return ""
	}

	options := []string{tui.RecoverRetry}
	if g.canFallBack(cause) {
		options = append(options, tui.RecoverOffline)
	}
	choice, err := tui.ChooseRecovery(step, cause, options)
	if err != nil {
		r.logger.WithError(err).Debug("recovery prompt failed")
		return ""
	}
	return choice
}

// drive runs one controller operation behind the spinner
func (r *runtime) drive(ctx context.Context, title string, op func(context.Context) (session.Snapshot, error)) (session.Snapshot, error) {
	var snap session.Snapshot
	err := r.spin(ctx, title, func(ctx context.Context) error {
		var opErr error
		snap, opErr = op(ctx)
		return opErr
	})
	return snap, err
}

func (r *runtime) approveRepair(snap session.Snapshot, done, auto int) (bool, error) {
	if done < auto {
		r.logger.Info("repair approved by --auto-repair", "repair", done+1, "limit", auto)
		return true, nil
	}
	if !r.cc.Interactive() {
		return false, nil
	}
	var issues []string
	if snap.Verdict != nil {
		issues = snap.Verdict.Issues
	}
	return tui.ApproveRepair(issues)
}

// finish writes whatever artifact the session holds and maps the final
// state to the command's error
func (r *runtime) finish(snap session.Snapshot, opts *generateOptions, cause error) error {
	if snap.State.HasArtifact() && snap.Artifact != nil {
		if err := r.writeResult(snap, opts); err != nil {
			return err
		}
		if cause != nil && !r.cc.Quiet {
			fmt.Fprintln(r.cc.Stderr, r.styles.Warning.Render("⚠ The script above has not passed a quality check"))
		}
	}

	if cause != nil {
		return cause
	}
	if snap.State == session.StateNeedsUpdate {
		return fmt.Errorf("%w: %d issue(s) remain after cycle %d", exitcode.ErrNeedsUpdate, len(snap.Verdict.Issues), snap.Cycle)
	}
	return nil
}

type generateResult struct {
	SessionID string            `json:"session_id"`
	State     session.State     `json:"state"`
	Cycle     int               `json:"cycle"`
	Dialect   string            `json:"dialect"`
	Code      string            `json:"code"`
	Metadata  artifact.Metadata `json:"metadata"`
	Digest    string            `json:"digest"`
	Verdict   *checker.Verdict  `json:"verdict,omitempty"`
}

func (r *runtime) writeResult(snap session.Snapshot, opts *generateOptions) error {
	var out io.Writer = r.cc.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(generateResult{
			SessionID: snap.ID,
			State:     snap.State,
			Cycle:     snap.Cycle,
			Dialect:   snap.Artifact.Dialect,
			Code:      snap.Artifact.Code,
			Metadata:  snap.Artifact.Metadata,
			Digest:    snap.Artifact.Digest,
			Verdict:   snap.Verdict,
		})
	}

	code := snap.Artifact.Code
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if _, err := io.WriteString(out, code); err != nil {
		return err
	}
	if opts.output != "" && !r.cc.Quiet {
		fmt.Fprintf(r.cc.Stderr, "Wrote %s\n", opts.output)
	}
	return nil
}
