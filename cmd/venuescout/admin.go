package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/cronscript"
	"github.com/michaelcolletti/venue-research-agent/pkg/state"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
)

var (
	configForce    bool
	cronSchedule   string
	cronOutputDir  string
	cronBinaryPath string
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the venue database and seed exclusions",
	Args:  cobra.NoArgs,
	Run:   runInitDB,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last run and database totals",
	Args:  cobra.NoArgs,
	Run:   runStatus,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or check the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration",
	Args:  cobra.NoArgs,
	Run:   runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report validation errors and unknown keys",
	Args:  cobra.NoArgs,
	Run:   runConfigCheck,
}

var cronScriptCmd = &cobra.Command{
	Use:   "cron-script",
	Short: "Generate run_daily.sh for cron",
	Long: `Write an executable run_daily.sh that runs the daily search, and the
weekly report on Sundays, logging to logs/daily_YYYYMMDD.log. venuescout does
not schedule anything itself; add the printed line to your crontab.

Schedule format: standard cron expression (5 fields), default settings.cron_schedule.`,
	Args: cobra.NoArgs,
	Run:  runCronScript,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	cronScriptCmd.Flags().StringVar(&cronSchedule, "schedule", "", "cron schedule (default settings.cron_schedule)")
	cronScriptCmd.Flags().StringVar(&cronOutputDir, "dir", ".", "directory to write the script into")
	cronScriptCmd.Flags().StringVar(&cronBinaryPath, "binary", "", "venuescout executable (default this binary)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)

	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cronScriptCmd)
}

func runInitDB(cmd *cobra.Command, args []string) {
	var (
		cfg   *config.Config
		store *venues.Store
	)
	// The store migrates and seeds on start.
	cleanup := mustStart(&cfg, &store)
	defer cleanup()

	fmt.Printf("✅ Database ready: %s\n", cfg.Settings.Database)
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var (
		cfg   *config.Config
		store *venues.Store
		kv    state.KV
	)
	cleanup := mustStart(&cfg, &store, &kv)
	defer cleanup()

	fmt.Printf("Config:    %s\n", cfg.Path())
	fmt.Printf("Database:  %s\n\n", cfg.Settings.Database)

	run, ok, err := state.LoadLastRun(ctx, kv)
	switch {
	case err != nil:
		fmt.Printf("Last run:  unavailable (%v)\n", err)
	case !ok:
		fmt.Println("Last run:  never")
	default:
		fmt.Printf("Last run:  %s via %s, %d/%d successful\n", run.Date, run.Provider, run.Successful, run.QueriesRun)
		fmt.Printf("Batch:     %s\n", run.Path)
	}

	st, err := store.Stats(ctx)
	if err != nil {
		fail(cleanup, "Error reading database: %v", err)
	}
	fmt.Printf("\nVenues:         %d (%d active, %d excluded)\n", st.Venues, st.ActiveVenues, st.ExcludedVenues)
	fmt.Printf("Opportunities:  %d (%d open)\n", st.Opportunities, st.OpenOpportunities)
	fmt.Printf("Searches:       %d\n", st.Searches)
	fmt.Printf("Reports:        %d\n", st.Reports)
	if st.LastSearch != "" {
		fmt.Printf("Last processed: %s\n", st.LastSearch)
	}
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path, err := config.WriteStarter(configPath, configForce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !configForce {
			fmt.Fprintln(os.Stderr, "Use --force to overwrite.")
		}
		os.Exit(1)
	}
	fmt.Printf("✅ Wrote starter configuration: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit regions, search templates and acts")
	fmt.Println("  2. Put API keys in .env (ANTHROPIC_API_KEY, OPENROUTER_API_KEY, ...)")
	fmt.Println("  3. venuescout providers")
}

func runConfigCheck(cmd *cobra.Command, args []string) {
	report, err := config.Check(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !report.Exists {
		fmt.Fprintf(os.Stderr, "Config file not found: %s\nRun 'venuescout config init' to create one.\n", report.Path)
		os.Exit(1)
	}

	fmt.Printf("Checking %s\n\n", report.Path)
	for _, key := range report.UnknownKeys {
		fmt.Printf("  ⚠ unknown key: %s\n", key)
	}
	for _, verr := range report.Validation {
		fmt.Printf("  ✗ %s: %s\n", verr.Field, verr.Message)
	}
	if !report.OK() {
		os.Exit(1)
	}
	fmt.Println("✅ Configuration OK")
}

func runCronScript(cmd *cobra.Command, args []string) {
	var cfg *config.Config
	cleanup := mustStart(&cfg)
	defer cleanup()

	schedule := cronSchedule
	if schedule == "" {
		schedule = cfg.Settings.CronSchedule
	}
	binary := cronBinaryPath
	if binary == "" {
		if exe, err := os.Executable(); err == nil {
			binary = exe
		}
	}
	dir, err := filepath.Abs(cronOutputDir)
	if err != nil {
		fail(cleanup, "Error: %v", err)
	}

	res, err := cronscript.Generate(cronscript.Options{
		Dir:        dir,
		Binary:     binary,
		ConfigPath: absConfigPath(cfg),
		Schedule:   schedule,
	}, time.Now())
	if err != nil {
		fail(cleanup, "Error: %v", err)
	}

	fmt.Printf("✅ Created daily run script: %s\n\n", res.Path)
	fmt.Println("To set up the cron job:")
	fmt.Println("  crontab -e")
	fmt.Printf("  # Add: %s\n\n", res.Crontab)
	fmt.Printf("Next run:  %s\n", res.Next.Format("2006-01-02 15:04:05"))
}

func absConfigPath(cfg *config.Config) string {
	if cfg.Path() == "" {
		return ""
	}
	if _, err := os.Stat(cfg.Path()); err != nil {
		return ""
	}
	abs, err := filepath.Abs(cfg.Path())
	if err != nil {
		return cfg.Path()
	}
	return abs
}
