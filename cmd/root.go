// Package cmd implements the kgctl command tree.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/application"
	"github.com/litkg/kgctl/internal/logging"
)

// exitError carries a child process exit status through cobra so
// Execute can propagate it as kgctl's own.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "Provision and drive the knowledge-graph literature toolkit",
	Long: `kgctl manages the conda environment of the knowledge-graph application
and the literature pipeline around it: it provisions the "kg" environment
with the Python packages the app needs, launches the app inside it,
crawls PubMed, prepares text corpora, orchestrates batch extraction, and
builds and merges the resulting knowledge graphs.

Run kgctl without arguments for the interactive menu.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logging.New(logging.Options{
			Level:  logLevel,
			Format: logFormat,
		}))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}

		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}
