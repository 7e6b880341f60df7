package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
)

func newDialectsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dialects [name]",
		Short: "List the registered script dialects",
		Long: `List the built-in dialects and any loaded from dialect_files in the config.
Pass a name to see its entry point, skeleton and rules.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return instrument(cmd, func(ctx context.Context) error {
				return runDialects(cmd, args, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

type dialectSummary struct {
	Name        string   `json:"name"`
	Framework   string   `json:"framework"`
	EntryPoint  string   `json:"entry_point"`
	Temperature float64  `json:"temperature"`
	Rules       []string `json:"rules,omitempty"`
	Forbidden   []string `json:"forbidden,omitempty"`
	Skeleton    string   `json:"skeleton,omitempty"`
}

func summarize(p dialect.Profile, detailed bool) dialectSummary {
	s := dialectSummary{
		Name:        p.Name(),
		Framework:   p.Framework(),
		EntryPoint:  p.EntryPoint(),
		Temperature: p.Temperature(),
	}
	if detailed {
		s.Rules = p.Rules()
		s.Forbidden = p.Forbidden()
		s.Skeleton = p.Skeleton()
	}
	return s
}

func runDialects(cmd *cobra.Command, args []string, asJSON bool) error {
	rt, err := newRuntime(cmd, false)
	if err != nil {
		return err
	}
	out := rt.cc.Stdout

	if len(args) == 1 {
		p, err := rt.registry.Lookup(args[0])
		if err != nil {
			return err
		}
		s := summarize(p, true)
		if asJSON {
			return encodeJSON(out, s)
		}
		fmt.Fprintf(out, "%s (%s)\n", rt.styles.Title.Render(s.Name), s.Framework)
		fmt.Fprintf(out, "Entry point: %s\n", s.EntryPoint)
		fmt.Fprintf(out, "Temperature: %.1f\n\n", s.Temperature)
		fmt.Fprintln(out, "Rules:")
		for i, rule := range s.Rules {
			fmt.Fprintf(out, "  %d. %s\n", i+1, rule)
		}
		if len(s.Forbidden) > 0 {
			fmt.Fprintf(out, "\nForbidden: %s\n", strings.Join(s.Forbidden, ", "))
		}
		fmt.Fprintf(out, "\nSkeleton:\n%s\n", s.Skeleton)
		return nil
	}

	var all []dialectSummary
	for _, p := range rt.registry.Profiles() {
		all = append(all, summarize(p, false))
	}
	if asJSON {
		return encodeJSON(out, all)
	}
	for _, s := range all {
		marker := " "
		if s.Name == rt.profile.Name() {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-12s %-12s %s\n", marker, s.Name, s.Framework, s.EntryPoint)
	}
	return nil
}
