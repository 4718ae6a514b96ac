package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/ingest"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
)

var (
	processSample bool
	reportHTML    bool
)

var processCmd = &cobra.Command{
	Use:   "process [batch.json]",
	Short: "Parse a result batch into the venue database",
	Long: `Parse venues and booking opportunities out of a saved result batch.

Use --sample to write and process a small built-in batch, which needs no API
key.

Examples:
  venuescout process data/search_results/daily_20260118_060000.json
  venuescout process --sample`,
	Args: func(cmd *cobra.Command, args []string) error {
		if processSample {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	Run: runProcess,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the weekly report",
	Long: `Write a markdown report covering last Monday through Sunday: new venues,
booking opportunities and coverage by region. --html also writes an HTML
rendering next to it.`,
	Args: cobra.NoArgs,
	Run:  runReport,
}

var actsCmd = &cobra.Command{
	Use:   "acts",
	Short: "List configured acts",
	Args:  cobra.NoArgs,
	Run:   runActs,
}

func init() {
	processCmd.Flags().BoolVar(&processSample, "sample", false, "write and process the sample batch")
	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "also write an HTML version")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(actsCmd)
}

func runProcess(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var (
		cfg  *config.Config
		proc *ingest.Processor
	)
	cleanup := mustStart(&cfg, &proc)
	defer cleanup()

	var path string
	if processSample {
		p, err := ingest.Sample(cfg.Settings.DataDir)
		if err != nil {
			fail(cleanup, "Error writing sample batch: %v", err)
		}
		fmt.Printf("Created sample results file: %s\n", p)
		path = p
	} else {
		path = args[0]
	}

	if _, err := proc.ProcessFile(ctx, path); err != nil {
		fail(cleanup, "Error processing %s: %v", path, err)
	}
}

func runReport(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var (
		cfg   *config.Config
		store *venues.Store
	)
	cleanup := mustStart(&cfg, &store)
	defer cleanup()

	report, err := venues.WeeklyReport(ctx, store, venues.ActsFromConfig(cfg), time.Now())
	if err != nil {
		fail(cleanup, "Error building report: %v", err)
	}
	paths, err := venues.WriteReport(ctx, store, report, cfg.Settings.ReportsDir, reportHTML)
	if err != nil {
		fail(cleanup, "Error writing report: %v", err)
	}

	fmt.Printf("Weekly report (%s to %s): %d new venues, %d new opportunities\n",
		report.WeekStart, report.WeekEnd, report.NewVenues, report.NewOpportunities)
	for _, p := range paths {
		fmt.Printf("Report saved to: %s\n", p)
	}
}

func runActs(cmd *cobra.Command, args []string) {
	var cfg *config.Config
	cleanup := mustStart(&cfg)
	defer cleanup()

	venues.WriteActs(cmd.OutOrStdout(), venues.ActsFromConfig(cfg))
}
