package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "officiantfinder",
	Short: "Ontario wedding officiant directory",
	Long: `Officiant Finder syncs the Ontario registry of wedding officiants
into PostgreSQL, geocodes municipalities, and serves a location-aware
search API.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
