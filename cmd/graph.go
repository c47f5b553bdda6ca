package cmd

import (
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build and merge knowledge graphs",
	Long: `Works on the knowledge_graph.json documents the extraction pipeline
produces: export visualizations and statistics, or merge many documents
into one.`,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
