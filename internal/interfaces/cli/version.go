package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/venturesonar/venturesonar/internal/config"
)

// NewVersionCmd creates the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err == nil && cliCtx.OutputFormat == "json" {
				return printJSON(cmd, map[string]string{
					"version":    config.Version,
					"commit":     GitCommit,
					"build_date": BuildDate,
					"go_version": runtime.Version(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sonar %s (commit: %s, built: %s, %s)\n",
				config.Version, GitCommit, BuildDate, runtime.Version())
			return nil
		},
	}
}
