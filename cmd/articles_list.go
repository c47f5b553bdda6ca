package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/catalog"
)

var articlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged articles",
	Long: `Lists articles from the catalog, newest first.

Examples:
  kgctl articles list
  kgctl articles list --term Silicosis --limit 50`,
	RunE: runArticlesList,
}

func init() {
	articlesCmd.AddCommand(articlesListCmd)
	articlesListCmd.Flags().String("term", "", "Only articles fetched for this search term")
	articlesListCmd.Flags().Int("limit", 20, "Maximum rows to show (0 for all)")
}

func runArticlesList(cmd *cobra.Command, _ []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}

	defer func() {
		_ = cat.Close()
	}()

	term, _ := cmd.Flags().GetString("term")
	limit, _ := cmd.Flags().GetInt("limit")

	articles, err := cat.List(catalog.ListOptions{Term: term, Limit: limit})
	if err != nil {
		return err
	}

	if len(articles) == 0 {
		_, _ = os.Stdout.WriteString("No articles cataloged yet. Fetch some with: kgctl crawl pubmed\n")

		return nil
	}

	table := newTable(os.Stdout, []string{"PMID", "Year", "Journal", "Title"})

	for _, a := range articles {
		table.Append([]string{
			a.PMID,
			a.Year(),
			truncateString(a.Journal, 30),
			truncateString(a.Title, 60),
		})
	}

	table.Render()

	return nil
}
