// Package main provides the entry point for the scout discovery CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Crypto account discovery pipeline",
	Long:  "Scout crawls the recent follows of curated signal accounts, scores newly registered crypto company accounts, and publishes each week's discoveries to CSV and Google Sheets.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
