package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage app_config.ini",
	Long: `Reads and writes the app_config.ini shared with the knowledge-graph
application: API credentials, literature search parameters, processing
options, and the application location.`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
