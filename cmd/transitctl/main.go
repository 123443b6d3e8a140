// Command transitctl runs the transit pipeline's server and one-off
// pipeline stages: the read API plus both scheduled workers when run
// as "serve", or a single pass of either worker for manual/cron-less
// deployments.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "transitctl",
	Short:        "Caltrain-lite transit pipeline",
	Long:         "Runs the schedule builder, realtime aggregator, and read API for a single commuter rail agency.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildScheduleCmd)
	rootCmd.AddCommand(refreshRealtimeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
