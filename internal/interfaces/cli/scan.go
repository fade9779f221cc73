package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/venturesonar/venturesonar/internal/application/acquisition"
	"github.com/venturesonar/venturesonar/internal/domain/record"
	"github.com/venturesonar/venturesonar/internal/infrastructure/analysis"
)

// ScanOptions holds the scan subcommand flags.
type ScanOptions struct {
	Timeout    time.Duration
	SkipMarket bool
}

// NewScanCmd creates the scan subcommand: run the full acquisition pipeline
// for one idea and print the results.
func NewScanCmd() *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan <business idea>",
		Short: "Fetch demographics, competitors, cofounders and investors for an idea",
		Long: "Scan runs the four analysis feeds sequentially with the configured\n" +
			"inter-step delay, retrying throttled requests with exponential backoff.\n" +
			"Expect a full scan to take tens of seconds; the delays are rate-limit\n" +
			"policy, not slack.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "overall scan timeout")
	cmd.Flags().BoolVar(&opts.SkipMarket, "skip-market", false, "skip the trailing market analysis call")
	return cmd
}

func runScan(cmd *cobra.Command, opts *ScanOptions, idea string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	client, err := analysis.NewClient(cliCtx.Config.Analysis, analysis.WithLogger(cliCtx.Logger))
	if err != nil {
		return err
	}

	orchOpts := []acquisition.Option{acquisition.WithLogger(cliCtx.Logger)}
	if opts.SkipMarket {
		orchOpts = append(orchOpts, acquisition.WithoutMarketAnalysis())
	}
	orch := acquisition.NewOrchestrator(client, cliCtx.Config.Acquisition, orchOpts...)
	defer orch.Close()

	updates, cancel := orch.Subscribe()
	defer cancel()

	if _, err := orch.Submit(cmd.Context(), idea); err != nil {
		return err
	}

	timeout := time.After(opts.Timeout)
	printed := make(map[record.Category]acquisition.Status, 4)
	for {
		var snap acquisition.Snapshot
		select {
		case snap = <-updates:
		case <-timeout:
			return fmt.Errorf("scan timed out after %s", opts.Timeout)
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}

		printProgress(cmd, cliCtx, snap, printed)
		if snap.Done() {
			break
		}
	}

	// Done covers the four category steps only; the market-analysis write
	// lands after, so wait for the run goroutine without cancelling it.
	orch.Wait()
	snap := orch.Snapshot()

	for _, notice := range orch.Notices() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", notice.Category, notice.Message)
	}
	return printScanResult(cmd, cliCtx, snap)
}

func printProgress(cmd *cobra.Command, cliCtx *CLIContext, snap acquisition.Snapshot, printed map[record.Category]acquisition.Status) {
	if cliCtx.OutputFormat == "json" {
		return
	}
	for _, cat := range record.AllCategories() {
		status := snap.Categories[cat].Status
		if status == acquisition.StatusPending || printed[cat] == status {
			continue
		}
		printed[cat] = status
		switch status {
		case acquisition.StatusLoading:
			fmt.Fprintf(cmd.OutOrStdout(), "fetching %s...\n", cat)
		case acquisition.StatusSuccess:
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d found\n", cat, snap.TotalFound[cat])
		case acquisition.StatusError:
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: failed (%s)\n", cat, snap.Categories[cat].LastError)
		}
	}
}

func printScanResult(cmd *cobra.Command, cliCtx *CLIContext, snap acquisition.Snapshot) error {
	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd, snap)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nScan complete for %q\n\n", snap.Idea)

	if len(snap.Demographics) > 0 {
		fmt.Fprintf(out, "Audience (%d locations):\n", len(snap.Demographics))
		for _, p := range snap.Demographics {
			fmt.Fprintf(out, "  %-24s weight %.0f\n", p.PanelName(), p.Weight)
		}
	}
	if len(snap.Competitors) > 0 {
		fmt.Fprintf(out, "Competitors (%d):\n", snap.TotalFound[record.CategoryCompetitors])
		for _, c := range snap.Competitors {
			fmt.Fprintf(out, "  %-24s threat %d/10  %s\n", c.DisplayName(), c.ThreatScore, c.Location)
		}
	}
	if len(snap.Cofounders) > 0 {
		fmt.Fprintf(out, "Cofounder candidates (%d):\n", snap.TotalFound[record.CategoryCofounders])
		for _, c := range snap.Cofounders {
			fmt.Fprintf(out, "  %-24s match %d/10  %s\n", c.DisplayName(), c.MatchScore, c.Location)
		}
	}
	if len(snap.Investors) > 0 {
		fmt.Fprintf(out, "Investors (%d):\n", snap.TotalFound[record.CategoryInvestors])
		for _, i := range snap.Investors {
			fmt.Fprintf(out, "  %-24s match %d/10  %s\n", i.DisplayName(), i.MatchScore, i.Location)
		}
	}
	if snap.Market != nil {
		fmt.Fprintf(out, "Market: cap estimate $%.0f, AI resilience %d/10\n",
			snap.Market.MarketCapUSD, snap.Market.ResilienceScore)
	}
	return nil
}
