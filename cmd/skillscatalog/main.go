package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"skillscatalog.shikanime.studio/cmd/skillscatalog/app"
	"skillscatalog.shikanime.studio/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs the root command and flushes telemetry whether or not it
// succeeded.
func execute(ctx context.Context) error {
	defer func() { shutdownTelemetry() }()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		return err
	}
	return nil
}

var (
	cfg = config.New()

	rootCmd = &cobra.Command{
		Use:               "skillscatalog",
		Short:             "Collect skill packages from GitHub into a catalog",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Fetch skills and write the catalog file",
		RunE:  runFetch,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scrape trigger",
		RunE:  runServe,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runMigrateUp,
	}
	downCmd = &cobra.Command{
		Use:   "down",
		Short: "Revert all applied migrations",
		RunE:  runMigrateDown,
	}

	// Flags
	configFile string
	addr       string

	shutdownTelemetry = func() {}
)

// flagKeys maps command flags to the configuration keys they override.
var flagKeys = map[string]string{
	"dsn":          "DSN",
	"output":       "OUTPUT_PATH",
	"strategy":     "DISCOVERY_STRATEGY",
	"source":       "SOURCE_REPO",
	"marker":       "SEARCH_MARKER",
	"limit":        "DISCOVERY_LIMIT",
	"stats":        "FETCH_STATS",
	"commit-dates": "FETCH_COMMIT_DATES",
	"translation":  "TRANSLATION_METHOD",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Optional configuration file; environment variables take precedence")
	rootCmd.PersistentFlags().String("dsn", "", "Database source name (postgres://...). Falls back to DSN and PG* environment variables")

	for _, cmd := range []*cobra.Command{fetchCmd, serveCmd} {
		cmd.Flags().String("output", config.DefaultOutputPath, "Output JSON file. Falls back to OUTPUT_PATH")
		cmd.Flags().String("strategy", "directory", "Discovery strategy: directory or search. Falls back to DISCOVERY_STRATEGY")
		cmd.Flags().String("source", config.DefaultSourceRepo, "Repository listed by the directory strategy. Falls back to SOURCE_REPO")
		cmd.Flags().String("marker", config.DefaultSearchMarker, "Descriptor filename; .json selects the manifest format. Falls back to SEARCH_MARKER")
		cmd.Flags().Int("limit", config.DefaultLimit, "Maximum number of candidates. Falls back to DISCOVERY_LIMIT")
		cmd.Flags().Bool("stats", false, "Fetch repository statistics. Falls back to FETCH_STATS")
		cmd.Flags().Bool("commit-dates", false, "Use the last commit touching each skill as updatedAt. Falls back to FETCH_COMMIT_DATES")
		cmd.Flags().String("translation", "google", "Translation method: none, google or openai. Falls back to TRANSLATION_METHOD")
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Address to run the server on (host:port). If empty, uses HOST and PORT environment variables")

	migrateCmd.AddCommand(upCmd, downCmd)
	rootCmd.AddCommand(fetchCmd, serveCmd, migrateCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return err
		}
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			cfg.Set(key, f.Value.String())
		}
	}
	config.SetupLog(cfg, cmd.ErrOrStderr())
	shutdown, err := config.SetupTelemetry(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	shutdownTelemetry = shutdown
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	return app.Fetch(cmd.Context(), cfg, cmd.OutOrStdout())
}

func runServe(cmd *cobra.Command, args []string) error {
	finalAddr := addr
	if finalAddr == "" {
		finalAddr = cfg.GetAddr()
	}
	return app.Serve(cmd.Context(), cfg, finalAddr)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	mg, err := app.NewMigrator(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	mg, err := app.NewMigrator(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Down()
}
