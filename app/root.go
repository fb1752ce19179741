// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-crashstats-admin",
	Short: "GoCrashStats-Admin is a web-based management tool for a crash-report service",
	Long: `GoCrashStats-Admin is a web-based management tool for a crash-report
aggregation service that provides superuser screens for managing products,
releases, featured versions, skip list rules, users, groups and the
SuperSearch field catalog.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
