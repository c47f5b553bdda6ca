package cmd

import (
	"github.com/spf13/cobra"
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Inspect the local article catalog",
	Long: `Queries the sqlite catalog the crawler fills: list fetched records,
export them in the crawler's file formats, and summarize coverage.`,
}

func init() {
	rootCmd.AddCommand(articlesCmd)
}
