package cmd

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var articlesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the article catalog",
	Long: `Shows how many articles the catalog holds, broken down by search term
and by publication year.

Examples:
  kgctl articles stats
  kgctl articles stats --output yaml`,
	RunE: runArticlesStats,
}

func init() {
	articlesCmd.AddCommand(articlesStatsCmd)
	articlesStatsCmd.Flags().StringP("output", "o", "table", "Output format (table, yaml)")
}

// catalogStats is the YAML shape of the stats view.
type catalogStats struct {
	Total  int            `yaml:"total"`
	ByTerm map[string]int `yaml:"by_term,omitempty"`
	ByYear map[string]int `yaml:"by_year,omitempty"`
}

func runArticlesStats(cmd *cobra.Command, _ []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}

	defer func() {
		_ = cat.Close()
	}()

	stats := catalogStats{ByTerm: map[string]int{}, ByYear: map[string]int{}}

	if stats.Total, err = cat.Count(); err != nil {
		return err
	}

	terms, err := cat.CountByTerm()
	if err != nil {
		return err
	}

	years, err := cat.CountByYear()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "yaml" {
		for _, t := range terms {
			stats.ByTerm[t.Term] = t.Count
		}

		for _, y := range years {
			stats.ByYear[y.Year] = y.Count
		}

		return printYAML(stats)
	}

	table := newTable(os.Stdout, []string{"Search Term", "Articles"})
	for _, t := range terms {
		table.Append([]string{t.Term, strconv.Itoa(t.Count)})
	}

	table.Append([]string{"total", strconv.Itoa(stats.Total)})
	table.Render()

	if len(years) > 0 {
		_, _ = os.Stdout.WriteString("\n")

		yearTable := newTable(os.Stdout, []string{"Year", "Articles"})
		for _, y := range years {
			yearTable.Append([]string{y.Year, strconv.Itoa(y.Count)})
		}

		yearTable.Render()
	}

	return nil
}
