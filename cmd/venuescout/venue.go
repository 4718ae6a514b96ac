package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
)

var (
	venueRegion  string
	venueState   string
	venueType    string
	venueWebsite string
	venueGenres  []string

	excludeReason string
	excludeNotes  string

	exportFormat string
)

var venueCmd = &cobra.Command{
	Use:   "venue",
	Short: "Manage venues and the exclusion list",
}

var venueAddCmd = &cobra.Command{
	Use:   "add <name> <city>",
	Short: "Add a venue by hand",
	Long: `Add a venue to the database. Adding a venue that already exists only
updates its last seen date.

Example:
  venuescout venue add "The Anchor" Kingston --region "Hudson Valley" --type bar --genre folk --genre rock`,
	Args: cobra.ExactArgs(2),
	Run:  runVenueAdd,
}

var venueExcludeCmd = &cobra.Command{
	Use:   "exclude <name> <city>",
	Short: "Stop tracking a venue",
	Long: `Add a venue to the exclusion list. Excluded venues are skipped when
processing results.

Reasons: ` + strings.Join(venues.ExclusionReasons, ", "),
	Args: cobra.ExactArgs(2),
	Run:  runVenueExclude,
}

var venueUnexcludeCmd = &cobra.Command{
	Use:   "unexclude <name> <city>",
	Short: "Remove a venue from the exclusion list",
	Args:  cobra.ExactArgs(2),
	Run:   runVenueUnexclude,
}

var venueExcludedCmd = &cobra.Command{
	Use:   "excluded",
	Short: "List excluded venues",
	Args:  cobra.NoArgs,
	Run:   runVenueExcluded,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export active venues",
	Long: `Export all active venues to the data directory.

Formats: ` + strings.Join(venues.ExportFormats, ", "),
	Args: cobra.NoArgs,
	Run:  runExport,
}

func init() {
	venueAddCmd.Flags().StringVar(&venueRegion, "region", "", "region name")
	venueAddCmd.Flags().StringVar(&venueState, "state", "", "state (default settings.state)")
	venueAddCmd.Flags().StringVar(&venueType, "type", "", "venue type, e.g. bar, brewery")
	venueAddCmd.Flags().StringVar(&venueWebsite, "website", "", "website URL")
	venueAddCmd.Flags().StringSliceVar(&venueGenres, "genre", nil, "genre (repeatable)")

	venueExcludeCmd.Flags().StringVar(&excludeReason, "reason", venues.ReasonNoResponse, "exclusion reason")
	venueExcludeCmd.Flags().StringVar(&excludeNotes, "notes", "", "free-form notes")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", venues.FormatJSON, "export format")

	venueCmd.AddCommand(venueAddCmd)
	venueCmd.AddCommand(venueExcludeCmd)
	venueCmd.AddCommand(venueUnexcludeCmd)
	venueCmd.AddCommand(venueExcludedCmd)

	rootCmd.AddCommand(venueCmd)
	rootCmd.AddCommand(exportCmd)
}

func runVenueAdd(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var (
		cfg   *config.Config
		store *venues.Store
	)
	cleanup := mustStart(&cfg, &store)
	defer cleanup()

	state := venueState
	if state == "" {
		state = cfg.Settings.State
	}
	id, created, err := store.SaveVenue(ctx, venues.Venue{
		Name:      args[0],
		City:      args[1],
		Region:    venueRegion,
		State:     state,
		VenueType: venueType,
		Website:   venueWebsite,
		Genres:    venueGenres,
		Source:    venues.SourceManual,
	})
	if err != nil {
		fail(cleanup, "Error adding venue: %v", err)
	}
	if created {
		fmt.Printf("✅ Added venue: %s (%s) [%s]\n", args[0], args[1], id)
	} else {
		fmt.Printf("Venue already known: %s (%s) [%s]; last seen updated\n", args[0], args[1], id)
	}
}

func runVenueExclude(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var store *venues.Store
	cleanup := mustStart(&store)
	defer cleanup()

	added, err := store.Exclude(ctx, args[0], args[1], excludeReason, excludeNotes)
	if err != nil {
		fail(cleanup, "Error excluding venue: %v", err)
	}
	if !added {
		fmt.Printf("Already excluded: %s (%s)\n", args[0], args[1])
		return
	}
	fmt.Printf("✅ Excluded: %s (%s), reason: %s\n", args[0], args[1], excludeReason)
}

func runVenueUnexclude(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var store *venues.Store
	cleanup := mustStart(&store)
	defer cleanup()

	found, err := store.Unexclude(ctx, args[0], args[1])
	if err != nil {
		fail(cleanup, "Error removing exclusion: %v", err)
	}
	if !found {
		fmt.Printf("Not on the exclusion list: %s (%s)\n", args[0], args[1])
		return
	}
	fmt.Printf("✅ Restored: %s (%s)\n", args[0], args[1])
}

func runVenueExcluded(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var store *venues.Store
	cleanup := mustStart(&store)
	defer cleanup()

	list, err := store.ListExcluded(ctx)
	if err != nil {
		fail(cleanup, "Error listing exclusions: %v", err)
	}
	if len(list) == 0 {
		fmt.Println("No excluded venues.")
		return
	}

	fmt.Printf("\nExcluded Venues (%d)\n\n", len(list))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCITY\tREASON\tDATE\tNOTES")
	fmt.Fprintln(w, "----\t----\t------\t----\t-----")
	for _, e := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.City, e.Reason, e.DateExcluded, e.Notes)
	}
	_ = w.Flush()
}

func runExport(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var (
		cfg   *config.Config
		store *venues.Store
	)
	cleanup := mustStart(&cfg, &store)
	defer cleanup()

	path, n, err := venues.Export(ctx, store, exportFormat, cfg.Settings.DataDir, time.Now())
	if err != nil {
		fail(cleanup, "Error exporting venues: %v", err)
	}
	fmt.Printf("Exported %d venues to: %s\n", n, path)
}
