package cmd

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/config"
	"github.com/felixgeelhaar/scriptsmith/internal/log"
	"github.com/felixgeelhaar/scriptsmith/internal/tui"
)

// CommandContext holds the persistent flags of one invocation. Commands
// build it in RunE instead of reading package globals.
type CommandContext struct {
	// Output control
	Verbose bool
	Quiet   bool
	NoColor bool
	Trace   bool

	// Configuration
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Backend    string
	Dialect    string
	Timeout    time.Duration

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewCommandContext extracts command context from cobra.Command flags.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, err
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, err
	}
	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}
	trace, err := flags.GetBool("trace")
	if err != nil {
		return nil, err
	}
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return nil, err
	}
	backend, err := flags.GetString("backend")
	if err != nil {
		return nil, err
	}
	dialectName, err := flags.GetString("dialect")
	if err != nil {
		return nil, err
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	if verbose && logLevel == "" {
		logLevel = "debug"
	}

	return &CommandContext{
		Verbose:    verbose,
		Quiet:      quiet,
		NoColor:    noColor || os.Getenv("NO_COLOR") != "",
		Trace:      trace,
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Backend:    backend,
		Dialect:    dialectName,
		Timeout:    timeout,
		Stdin:      cmd.InOrStdin(),
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	}, nil
}

// LoadConfig resolves the configuration with this invocation's flags on top
func (c *CommandContext) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg.Apply(config.Overrides{
		Backend:   c.Backend,
		Dialect:   c.Dialect,
		LogLevel:  c.LogLevel,
		LogFormat: c.LogFormat,
		Timeout:   c.Timeout,
		Trace:     c.Trace,
	})
	return cfg, nil
}

// Logger builds the invocation's logger. Quiet runs only log errors.
func (c *CommandContext) Logger(cfg *config.Config) *log.Logger {
	if c.Quiet && !c.Verbose {
		quiet := *cfg
		quiet.Log.Level = "error"
		return quiet.Logger(c.Stderr)
	}
	return cfg.Logger(c.Stderr)
}

// Styles picks colored or plain rendering
func (c *CommandContext) Styles() tui.Styles {
	if c.NoColor || !isTerminal(c.Stderr) {
		return tui.PlainStyles()
	}
	return tui.DefaultStyles()
}

// Interactive reports whether prompts may be shown
func (c *CommandContext) Interactive() bool {
	if c.Quiet {
		return false
	}
	if f, ok := c.Stdin.(*os.File); !ok || f != os.Stdin {
		return false
	}
	return tui.ShouldPrompt()
}

// Animate reports whether the spinner should run
func (c *CommandContext) Animate() bool {
	return !c.Quiet && !c.Verbose && isTerminal(c.Stderr)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
