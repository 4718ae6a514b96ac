package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
	"github.com/michaelcolletti/venue-research-agent/pkg/search"
)

var (
	searchProvider   string
	searchMaxQueries int
	queryProvider    string
)

var searchCmd = &cobra.Command{
	Use:     "search",
	Aliases: []string{"daily"},
	Short:   "Run the daily batch of venue searches",
	Long: `Build queries from the configured regions and templates, run them through
the first usable provider and save the batch to the results directory.

The primary provider is --provider, or search_provider.default_provider;
search_provider.fallback_providers are tried in order when it cannot be
constructed or fails validation. Failed queries are recorded in the batch and
do not change the exit status.

Examples:
  venuescout search
  venuescout search --provider ollama --max-queries 3`,
	Args: cobra.NoArgs,
	Run:  runSearch,
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run one ad-hoc search",
	Long: `Run a single query with the given provider (default: the configured
default provider) and print the result. Fallback providers are not tried.
Nothing is written to the results directory.

Example:
  venuescout query "Beacon NY open mic nights"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuery,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List search providers and their credentials",
	Args:  cobra.NoArgs,
	Run:   runProviders,
}

func init() {
	searchCmd.Flags().StringVarP(&searchProvider, "provider", "p", "", "primary provider (overrides default_provider)")
	searchCmd.Flags().IntVarP(&searchMaxQueries, "max-queries", "n", 0, "maximum queries to run (default settings.max_queries)")
	queryCmd.Flags().StringVarP(&queryProvider, "provider", "p", "", "primary provider (overrides default_provider)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(providersCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var (
		cfg  *config.Config
		orch *search.Orchestrator
	)
	cleanup := mustStart(&cfg, &orch)

	limit := searchMaxQueries
	if !cmd.Flags().Changed("max-queries") {
		limit = cfg.Settings.MaxQueries
	}

	report, err := orch.RunDaily(ctx, searchProvider, limit)
	if err != nil {
		var fatal *providers.FatalOrchestrationError
		if errors.As(err, &fatal) {
			fail(cleanup, "\n✗ %v\nCheck your API keys and provider settings with 'venuescout providers'.", err)
		}
		fail(cleanup, "Error: %v", err)
	}
	cleanup()

	if report.Batch.Successful < report.Batch.QueriesRun {
		fmt.Printf("%d queries failed; see the batch file for details.\n", report.Batch.QueriesRun-report.Batch.Successful)
	}
	fmt.Printf("\nNext: venuescout process %s\n", report.Path)
}

func runQuery(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	var orch *search.Orchestrator
	cleanup := mustStart(&orch)
	defer cleanup()

	text := strings.Join(args, " ")
	res, err := orch.RunSingle(ctx, queryProvider, text)
	if err != nil {
		fail(cleanup, "\n✗ %v", err)
	}

	fmt.Printf("\n🔍 %s\n%s\n", text, strings.Repeat("-", 50))
	if !res.Success {
		fmt.Printf("✗ Error: %s\n", res.Error)
		return
	}
	fmt.Println(res.Text)
}

func runProviders(cmd *cobra.Command, args []string) {
	var (
		cfg  *config.Config
		reg  *providers.Registry
		deps providers.Deps
	)
	cleanup := mustStart(&cfg, &reg, &deps)
	defer cleanup()

	ok, bad := "set", "missing"
	if term.IsTerminal(int(os.Stdout.Fd())) {
		ok, bad = "✓", "✗"
	}

	candidates := cfg.ProviderCandidates("")
	role := func(name string) string {
		for i, c := range candidates {
			if strings.EqualFold(c, name) {
				if i == 0 {
					return "default"
				}
				return fmt.Sprintf("fallback %d", i)
			}
		}
		return ""
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tROLE\tCREDENTIALS\tSTATUS")
	fmt.Fprintln(w, "--------\t----\t-----------\t------")
	for _, name := range reg.List() {
		status := "ready"
		creds := "none required"

		p, err := reg.Create(name, cfg, providers.Deps{Env: deps.Env, Log: deps.Log})
		if err != nil {
			status = "unavailable: " + err.Error()
			creds = "-"
		} else if vars := p.RequiredEnvVars(); len(vars) > 0 {
			parts := make([]string, 0, len(vars))
			for _, v := range vars {
				mark := ok
				if providers.Getenv(deps.Env, v) == "" {
					mark = bad
					status = "needs credentials"
				}
				parts = append(parts, v+" "+mark)
			}
			creds = strings.Join(parts, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, role(name), creds, status)
	}
	_ = w.Flush()
}
