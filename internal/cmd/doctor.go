package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/health"
)

func newDoctorCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, backend and dialects",
		Long: `Check that the configuration is valid, report which completion backend
generation would use and confirm every dialect's offline scaffold passes its
own rubric. No completion request is sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return instrument(cmd, func(ctx context.Context) error {
				return runDoctor(ctx, cmd, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reports as JSON")

	return cmd
}

type doctorResult struct {
	Status  health.Status   `json:"status"`
	Reports []health.Report `json:"reports"`
}

func runDoctor(ctx context.Context, cmd *cobra.Command, asJSON bool) error {
	rt, err := newRuntime(cmd, false)
	if err != nil {
		return err
	}

	manager := health.NewManager()
	manager.AddChecker(health.NewConfigChecker(rt.cfg))
	manager.AddChecker(health.NewBackendChecker(rt.cfg.Provider, rt.registry))
	manager.AddChecker(health.NewDialectChecker(rt.registry))

	reports := manager.Check(ctx)
	overall := health.OverallStatus(reports)
	for _, r := range reports {
		rt.logger.Debug("health check", "name", r.Name, "status", r.Status, "latency", r.Latency)
	}

	if asJSON {
		if err := encodeJSON(rt.cc.Stdout, doctorResult{Status: overall, Reports: reports}); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			fmt.Fprintf(rt.cc.Stdout, "%s %-9s %s\n", rt.statusIcon(r.Status), r.Name, r.Message)
			if s, ok := r.Details["suggestion"].(string); ok {
				fmt.Fprintf(rt.cc.Stdout, "  %s\n", rt.styles.Muted.Render(s))
			}
		}
	}

	if overall == health.StatusUnhealthy {
		return errors.New(errors.ErrCodeConfigInvalid, "doctor found problems that block generation")
	}
	return nil
}

func (r *runtime) statusIcon(s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return r.styles.Success.Render("✓")
	case health.StatusDegraded:
		return r.styles.Warning.Render("⚠")
	default:
		return r.styles.Error.Render("✗")
	}
}
