package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/catalog"
	"github.com/litkg/kgctl/internal/pubmed"
)

var articlesExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export cataloged articles as crawler-shaped JSON or CSV",
	Long: `Writes articles from the catalog in the same layout the crawler
produces, so exports feed straight into "kgctl corpus prepare" and
"kgctl process". The format follows the file extension.

Examples:
  kgctl articles export silicosis.json --term Silicosis
  kgctl articles export everything.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runArticlesExport,
}

func init() {
	articlesCmd.AddCommand(articlesExportCmd)
	articlesExportCmd.Flags().String("term", "", "Only articles fetched for this search term")
	articlesExportCmd.Flags().Int("limit", 0, "Maximum articles to export (0 for all)")
}

func runArticlesExport(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("no matching articles in the catalog")
	}

	path := args[0]

	switch {
	case strings.HasSuffix(strings.ToLower(path), ".json"):
		err = pubmed.WriteArticlesJSON(path, articles)
	case strings.HasSuffix(strings.ToLower(path), ".csv"):
		err = pubmed.WriteArticlesCSV(path, articles)
	default:
		return fmt.Errorf("unsupported export format for %s, want .json or .csv", path)
	}

	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s exported %d articles to %s\n", okStyle.Render("✓"), len(articles), path)

	return nil
}
