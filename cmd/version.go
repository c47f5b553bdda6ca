package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the kgctl version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, _ = fmt.Fprintf(os.Stdout, "kgctl %s (commit %s, built %s, %s/%s)\n",
			version, commit, date, runtime.GOOS, runtime.GOARCH)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
