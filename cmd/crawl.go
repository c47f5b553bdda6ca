package cmd

import (
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Download literature metadata",
	Long: `Crawls a literature database and writes the results as the CSV/JSON
batch files the processing pipeline consumes.`,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}
