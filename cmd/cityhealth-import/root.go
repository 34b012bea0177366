package main

import (
	"github.com/spf13/cobra"

	"github.com/cityhealth/directory/internal/version"
)

var envName string

var rootCmd = &cobra.Command{
	Use:          "cityhealth-import",
	Short:        "Bulk import tools for the CityHealth directory",
	SilenceUsage: true,
	Version:      version.String(),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "config environment (default: $ENV or local)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute() //nolint:wrapcheck // cobra already printed the error
}
