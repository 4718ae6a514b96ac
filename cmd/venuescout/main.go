// Package main is the entry point for the venuescout CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/ingest"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/notify"
	"github.com/michaelcolletti/venue-research-agent/pkg/search"
	"github.com/michaelcolletti/venue-research-agent/pkg/state"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
	"github.com/michaelcolletti/venue-research-agent/pkg/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "venuescout",
	Short: "venuescout - live music venue research agent",
	Long: `venuescout builds web searches from your regions and cities, runs them
through an LLM search provider with automatic fallback, and keeps a local
database of venues and booking opportunities.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetFullVersion())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default config/venues.toml)")
	rootCmd.AddCommand(versionCmd)
}

// signalContext is cancelled on Ctrl-C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// startApp builds the dependency graph, fills targets and starts it. The
// returned cleanup stops the app; callers must run it before exiting.
func startApp(targets ...interface{}) (func(), error) {
	app := fx.New(
		fx.Supply(config.Path(configPath)),
		config.Module,
		logger.Module,
		state.Module,
		venues.Module,
		notify.Module,
		ingest.Module,
		search.Module,

		fx.Populate(targets...),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, err
	}

	cleanup := func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error stopping app: %v\n", err)
		}
	}
	return cleanup, nil
}

// mustStart is startApp for commands that cannot continue without it.
func mustStart(targets ...interface{}) func() {
	cleanup, err := startApp(targets...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting venuescout: %v\n", err)
		os.Exit(1)
	}
	return cleanup
}

func fail(cleanup func(), format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	if cleanup != nil {
		cleanup()
	}
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
