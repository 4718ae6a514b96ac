package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
	"github.com/michaelcolletti/venue-research-agent/pkg/wizard"
)

var (
	generateFrom  string
	generateForce bool
	wizardAddr    string
)

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build a configuration from a setup form",
	Long: `Build venues.toml from a JSON setup form: zip_code, base_region,
radius, acts and cities_with_counties. Cities are grouped into regions by
county. This is the same document the setup wizard posts.`,
	Example: "  venuescout config generate --from setup.json --force",
	Args:    cobra.NoArgs,
	Run:     runConfigGenerate,
}

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Serve the browser setup form",
	Args:  cobra.NoArgs,
	Run:   runWizard,
}

func init() {
	configGenerateCmd.Flags().StringVar(&generateFrom, "from", "", "setup form JSON file")
	configGenerateCmd.Flags().BoolVar(&generateForce, "force", false, "replace an existing file (the old one is backed up)")
	_ = configGenerateCmd.MarkFlagRequired("from")
	wizardCmd.Flags().StringVar(&wizardAddr, "addr", wizard.DefaultAddr, "listen address")

	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(wizardCmd)
}

func runConfigGenerate(cmd *cobra.Command, args []string) {
	raw, err := os.ReadFile(generateFrom)
	if err != nil {
		fail(nil, "Error reading form: %v", err)
	}
	var form config.SetupForm
	if err := json.Unmarshal(raw, &form); err != nil {
		fail(nil, "Error parsing form %s: %v", generateFrom, err)
	}

	now := time.Now()
	data, err := config.GenerateConfig(&form, now)
	if err != nil {
		fail(nil, "Invalid form: %v", err)
	}

	path := config.ResolvePath(configPath)
	if !generateForce {
		if _, err := os.Stat(path); err == nil {
			fail(nil, "Config file already exists: %s\nUse --force to replace it.", path)
		}
	}
	backup, err := config.WriteGenerated(path, data, now)
	if err != nil {
		fail(nil, "Error: %v", err)
	}
	if backup != "" {
		fmt.Printf("Previous configuration kept at %s\n", backup)
	}
	fmt.Printf("✅ Wrote configuration: %s\n", path)
	if form.InitDB {
		if err := initDatabase(cmd.Context(), path); err != nil {
			fail(nil, "Error initializing database: %v", err)
		}
		fmt.Println("✅ Database ready")
	}
}

func runWizard(cmd *cobra.Command, args []string) {
	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		log = logger.Nop()
	}
	defer func() { _ = log.Sync() }()

	srv := wizard.NewServer(wizard.Options{
		Addr:       wizardAddr,
		ConfigPath: configPath,
		InitDB:     initDatabase,
	}, log.Named("wizard"))

	ctx, stop := signalContext()
	defer stop()

	if err := srv.Start(); err != nil {
		fail(nil, "Error starting wizard: %v", err)
	}
	fmt.Printf("Setup wizard running at http://%s\nPress Ctrl+C to stop.\n", srv.Addr())
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("Setup wizard shutdown", zap.Error(err))
	}
}

// initDatabase creates the working directories named by the configuration
// at path, then migrates the venue database and seeds exclusions.
func initDatabase(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.NewLoader().Load(path)
	if err != nil {
		return err
	}
	for _, dir := range []string{cfg.Settings.DataDir, cfg.Settings.ResultsDir, cfg.Settings.ReportsDir, cfg.Settings.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	store, err := venues.Open(cfg.Settings.Database, logger.Nop())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Init(ctx, cfg)
}
