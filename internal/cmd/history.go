package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/journal"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled generation sessions",
		Long: `List sessions recorded with 'generate --journal' (or journal.enabled in the
config), newest first. The journal keeps digests, metadata and verdicts; it
never stores script code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return instrument(cmd, func(ctx context.Context) error {
				return runHistory(cmd, limit, asJSON)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most N sessions (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the sessions as JSON")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int, asJSON bool) error {
	rt, err := newRuntime(cmd, false)
	if err != nil {
		return err
	}

	entries, err := journal.ReadDir(rt.cfg.JournalDir())
	if err != nil {
		return err
	}
	summaries := journal.Summarize(entries)
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}

	if asJSON {
		return encodeJSON(rt.cc.Stdout, summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(rt.cc.Stdout, "no journaled sessions")
		return nil
	}

	for _, s := range summaries {
		digest := s.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(rt.cc.Stdout, "%s  %-8s  %-12s  %-12s  cycle %d  issues %d  %s\n",
			s.Updated.Local().Format(time.DateTime), shortID(s.SessionID), s.Dialect, s.State, s.Cycles, s.Issues, digest)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
