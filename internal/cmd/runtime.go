package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/config"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/log"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
	"github.com/felixgeelhaar/scriptsmith/internal/tui"
)

// runtime is everything a command needs, resolved once per invocation
type runtime struct {
	cc       *CommandContext
	cfg      *config.Config
	logger   *log.Logger
	styles   tui.Styles
	registry *dialect.Registry
	profile  dialect.Profile
}

// newRuntime loads config, dialects and the logger. Commands that talk to a
// backend pass validate so key problems surface before any work starts.
func newRuntime(cmd *cobra.Command, validate bool) (*runtime, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := cc.LoadConfig()
	if err != nil {
		return nil, err
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	profile, err := registry.Lookup(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	logger := cc.Logger(cfg)
	if cfg.Source != "" {
		logger.Debug("loaded config", "path", cfg.Source)
	}

	return &runtime{
		cc:       cc,
		cfg:      cfg,
		logger:   logger,
		styles:   cc.Styles(),
		registry: registry,
		profile:  profile,
	}, nil
}

// client builds the configured completion client
func (r *runtime) client(ctx context.Context) (provider.GenerationClient, error) {
	client, err := provider.New(ctx, r.cfg.Provider, r.registry)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("resolved backend", "backend", client.Name())
	return client, nil
}

// checker builds the configured checker for client
func (r *runtime) checker(client provider.GenerationClient, mode string) (checker.Checker, error) {
	m := r.cfg.Checker
	if mode != "" {
		parsed, err := checker.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	return checker.New(m, client, r.registry)
}

// spin runs fn behind the spinner when the terminal allows it
func (r *runtime) spin(ctx context.Context, title string, fn func(context.Context) error) error {
	return tui.RunWithSpinner(ctx, tui.SpinnerOptions{
		Title:   title,
		Output:  r.cc.Stderr,
		Enabled: r.cc.Animate(),
		Styles:  r.styles,
	}, fn)
}
