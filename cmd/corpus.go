package cmd

import (
	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Prepare text corpora from crawl results",
}

func init() {
	rootCmd.AddCommand(corpusCmd)
}
