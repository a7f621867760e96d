package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nedmenton/twitterbotrailway/internal/config"
	"github.com/nedmenton/twitterbotrailway/internal/discovery"
	"github.com/nedmenton/twitterbotrailway/internal/observability"
	"github.com/nedmenton/twitterbotrailway/internal/publish"
	"github.com/nedmenton/twitterbotrailway/internal/scoring"
	"github.com/nedmenton/twitterbotrailway/internal/signals"
	"github.com/nedmenton/twitterbotrailway/internal/sorsa"
	"github.com/nedmenton/twitterbotrailway/internal/store"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the weekly discovery pipeline end-to-end",
	Long: `Crawls the recent follows of every signal account in the registry, filters and
scores the candidates, saves new discoveries, and publishes the accepted set.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values; unset values fall back to environment
variables and defaults.`,
	RunE: runDiscoveryCmd,
}

var (
	runConfigPath   string
	runAPIKey       string
	runDatabaseURL  string
	runRegistryPath string
	runBatchSize    int
	runPaceSeconds  float64
	runMaxFollowers int
	runMaxAgeWeeks  int
	runMinScore     int
	runOutputDir    string
	runSheetsID     string
	runLogFile      string
	runLogLevel     string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Sorsa API key (optional, defaults to SORSA_API_KEY env var)")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "postgres:// URL or SQLite file path (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().StringVar(&runRegistryPath, "registry", "", "Path to a signal registry JSON file (optional, defaults to the bundled registry)")
	runCommand.Flags().IntVar(&runBatchSize, "batch-size", 0, "Signal accounts per batch")
	runCommand.Flags().Float64Var(&runPaceSeconds, "pace", 0, "Seconds to pause after each signal account")
	runCommand.Flags().IntVar(&runMaxFollowers, "max-followers", 0, "Skip candidates with more followers than this")
	runCommand.Flags().IntVar(&runMaxAgeWeeks, "max-age-weeks", 0, "Skip candidates older than this many weeks")
	runCommand.Flags().IntVar(&runMinScore, "min-score", 0, "Minimum total score for acceptance")
	runCommand.Flags().StringVarP(&runOutputDir, "out", "o", "", "Directory for the weekly CSV (optional, defaults to the working directory)")
	runCommand.Flags().StringVar(&runSheetsID, "sheet-id", "", "Google Sheets spreadsheet ID (optional, defaults to GOOGLE_SHEETS_ID env var)")
	runCommand.Flags().StringVar(&runLogFile, "log-file", "", "Path for the JSON log file (optional)")
	runCommand.Flags().StringVar(&runLogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR")

	rootCmd.AddCommand(runCommand)
}

func runDiscoveryCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("registry") {
		cfg.RegistryPath = runRegistryPath
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.BatchSize = runBatchSize
	}
	if cmd.Flags().Changed("pace") {
		cfg.PaceSeconds = runPaceSeconds
	}
	if cmd.Flags().Changed("max-followers") {
		cfg.MaxFollowers = runMaxFollowers
	}
	if cmd.Flags().Changed("max-age-weeks") {
		cfg.MaxAgeWeeks = runMaxAgeWeeks
	}
	if cmd.Flags().Changed("min-score") {
		cfg.ScoreThreshold = runMinScore
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("sheet-id") {
		cfg.SheetsID = runSheetsID
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = runLogFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = runLogLevel
	}

	// Step 3: Fill unset values from the environment and defaults
	cfg = cfg.MergeWithDefaults(config.FromEnv())

	// Step 4: Validate the merged configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, cleanup := config.SetupLogger(cfg.LogFile, config.ParseLogLevel(cfg.LogLevel))
	defer func() { _ = cleanup() }()
	slog.SetDefault(logger)

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	registry, err := loadRegistry(cfg.RegistryPath)
	if err != nil {
		return err
	}

	runner := discovery.NewRunner(
		sorsa.NewClient(cfg.APIKey),
		scoring.NewModel(scoring.DefaultCriteria(), registry),
		st,
		registry,
	)
	runner.Options = discovery.Options{
		BatchSize:      cfg.BatchSize,
		Pace:           cfg.Pace(),
		MaxFollowers:   cfg.MaxFollowers,
		MaxAgeWeeks:    cfg.MaxAgeWeeks,
		ScoreThreshold: cfg.ScoreThreshold,
	}
	runner.Publisher = buildPublisher(ctx, cfg)

	res, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("discovery run failed: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintRunSummary(res)
	printer.PrintTopDiscoveries(res.Accepted)

	return nil
}

// loadRegistry reads the registry file when one is configured and falls back
// to the bundled registry otherwise.
func loadRegistry(path string) (*signals.Registry, error) {
	if path == "" {
		return signals.Default(), nil
	}
	registry, err := signals.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load signal registry: %w", err)
	}
	return registry, nil
}

// buildPublisher assembles the CSV publisher and, when configured, the Google
// Sheets publisher. A sheets setup failure downgrades the run to CSV only.
func buildPublisher(ctx context.Context, cfg config.Config) publish.Publisher {
	pubs := publish.Multi{publish.NewCSV(cfg.OutputDir)}
	if cfg.SheetsID != "" {
		sheets, err := publish.NewSheets(ctx, cfg.SheetsID, []byte(cfg.SheetsCredentials))
		if err != nil {
			slog.Error("failed to set up sheets publisher, continuing with csv only", "error", err)
		} else {
			pubs = append(pubs, sheets)
		}
	}
	return pubs
}
