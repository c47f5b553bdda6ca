package cmd

import (
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect and manage the kg conda environment",
	Long: `Thin wrappers around conda's environment commands with parsed,
tabular output. The actual environment work is always conda's.`,
}

func init() {
	rootCmd.AddCommand(envCmd)
}
