package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scriptsmith/internal/version"
)

func newVersionCommand() *cobra.Command {
	var (
		long    bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			out := cmd.OutOrStdout()

			if asJSON {
				return encodeJSON(out, info)
			}
			if long {
				fmt.Fprintln(out, info.String())
				return nil
			}
			fmt.Fprintf(out, "scriptsmith %s\n", info.Version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "show detailed version information")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output version information as JSON")

	return cmd
}
