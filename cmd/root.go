package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "digest-engine",
	Short: "Admin notification batch aggregation and dispatch engine",
	Long: `digest-engine drains the admin notification event queue: events are
grouped by batch key within a rolling window and dispatched either
individually or collapsed into digest emails once a group reaches its
minimum batch size.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
}
