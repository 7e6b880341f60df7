package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/telemetry"
	"github.com/felixgeelhaar/scriptsmith/internal/version"
)

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "scriptsmith",
		Short: "Turn test scenarios into browser automation scripts",
		Long: `scriptsmith turns a plain-language test scenario into a ready-to-run browser
automation function for Playwright or Puppeteer. Each script is checked against
the dialect's rubric and can be repaired until the checker reports it ready.

Generated code goes to stdout; progress, verdicts and logs go to stderr.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: startTelemetry,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./scriptsmith.yaml or ~/.scriptsmith/config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.BoolP("verbose", "v", false, "verbose output (debug logs)")
	flags.BoolP("quiet", "q", false, "only print the generated code or verdict")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("trace", false, "export traces and metrics to stderr")
	flags.String("backend", "", "completion backend: auto, openai, anthropic, gemini, offline")
	flags.String("dialect", "", "script dialect (see 'scriptsmith dialects')")
	flags.Duration("timeout", 0, "completion request timeout (e.g. 90s)")

	root.AddCommand(
		newGenerateCommand(),
		newCheckCommand(),
		newPromptCommand(),
		newRequirementsCommand(),
		newDialectsCommand(),
		newDoctorCommand(),
		newHistoryCommand(),
		newVersionCommand(),
	)

	return root
}

// ExecuteContext runs the CLI with ctx and flushes telemetry on the way out
func ExecuteContext(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = telemetry.Shutdown(flushCtx)
	_ = telemetry.ShutdownMetrics(flushCtx)

	return err
}

// startTelemetry exports traces and metrics when --trace or
// telemetry.enabled asks for it
func startTelemetry(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg, err := cc.LoadConfig()
	if err != nil || !cfg.Telemetry.Enabled {
		// config errors surface from the command itself
		return nil
	}

	tc := telemetry.DevelopmentConfig()
	tc.ServiceVersion = version.Version
	tc.Writer = cmd.ErrOrStderr()
	tc.PrettyPrint = cfg.Telemetry.Pretty || cc.Trace
	_, err = telemetry.Init(cmd.Context(), tc)
	return err
}

// instrument runs fn inside a command span and records the invocation
func instrument(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx, span := telemetry.StartCommandSpan(cmd.Context(), cmd.Name())
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := "success"
	if err != nil {
		status = "error"
		telemetry.RecordError(span, err)
	} else {
		telemetry.RecordSuccess(span)
	}
	telemetry.RecordCommandInvocation(ctx, cmd.Name(), status, time.Since(start))
	return err
}
