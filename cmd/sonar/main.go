// CLI client entry point for VentureSonar.
package main

import (
	"os"

	"github.com/venturesonar/venturesonar/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
