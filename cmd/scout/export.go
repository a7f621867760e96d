package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nedmenton/twitterbotrailway/internal/config"
	"github.com/nedmenton/twitterbotrailway/internal/publish"
	"github.com/nedmenton/twitterbotrailway/internal/scoring"
	"github.com/nedmenton/twitterbotrailway/internal/store"
)

var exportCommand = &cobra.Command{
	Use:   "export",
	Short: "Export saved discoveries to CSV and Google Sheets",
	Long: `Writes every saved company at or above the score threshold to a CSV file,
ordered by total score descending. With --sheet-id the same rows are also
uploaded to a Google Sheets worksheet.`,
	RunE: runExportCmd,
}

var (
	exportDatabaseURL string
	exportOutputDir   string
	exportMinScore    int
	exportSheetsID    string
)

func init() {
	exportCommand.Flags().StringVar(&exportDatabaseURL, "db-url", "", "postgres:// URL or SQLite file path (optional, defaults to DATABASE_URL env var)")
	exportCommand.Flags().StringVarP(&exportOutputDir, "out", "o", "", "Output directory (optional, defaults to the working directory)")
	exportCommand.Flags().IntVar(&exportMinScore, "min-score", 200, "Minimum total score to include")
	exportCommand.Flags().StringVar(&exportSheetsID, "sheet-id", "", "Google Sheets spreadsheet ID (optional, uploads only when set)")

	rootCmd.AddCommand(exportCommand)
}

func runExportCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	env := config.FromEnv()

	databaseURL := exportDatabaseURL
	if databaseURL == "" {
		databaseURL = env.DatabaseURL
	}

	st, err := store.Open(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	companies, err := st.CompaniesByScore(ctx, exportMinScore)
	if err != nil {
		return fmt.Errorf("failed to query companies: %w", err)
	}
	if len(companies) == 0 {
		fmt.Fprintf(os.Stdout, "No saved companies with score >= %d\n", exportMinScore)
		return nil
	}

	accounts := make([]*scoring.ScoredAccount, len(companies))
	for i, c := range companies {
		accounts[i] = c.Scored()
	}

	pubs := publish.Multi{publish.NewCSV(exportOutputDir)}
	if exportSheetsID != "" {
		sheets, err := publish.NewSheets(ctx, exportSheetsID, []byte(env.SheetsCredentials))
		if err != nil {
			return fmt.Errorf("failed to set up sheets publisher: %w", err)
		}
		pubs = append(pubs, sheets)
	}

	label := time.Now().Format("20060102_150405")
	if err := pubs.Publish(ctx, accounts, label); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Exported %d companies\n", len(accounts))
	return nil
}
