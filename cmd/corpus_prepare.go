package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/corpus"
	"github.com/litkg/kgctl/internal/textproc"
)

var corpusPrepareCmd = &cobra.Command{
	Use:   "prepare <articles.json|articles.csv>...",
	Short: "Turn crawl results into extraction-ready text chunks",
	Long: `Assembles the articles from crawler JSON or CSV exports into one text
(PMID, title, and abstract blocks separated by a divider line), cleans
it, and splits it into overlapping chunks sized for the extractor's
context window. Writes chunk_<n>.txt files plus a manifest.json.

Examples:
  kgctl corpus prepare output/pubmed_results_all_20240101_120000.json
  kgctl corpus prepare results.csv --output corpus --max-chunk-size 4000`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCorpusPrepare,
}

func init() {
	corpusCmd.AddCommand(corpusPrepareCmd)
	corpusPrepareCmd.Flags().String("output", "corpus", "Output directory for chunk files")
	corpusPrepareCmd.Flags().Int("max-chunk-size", textproc.DefaultMaxChunkSize, "Maximum characters per chunk")
	corpusPrepareCmd.Flags().Int("overlap", textproc.DefaultOverlapSize, "Characters of overlap between consecutive chunks")
}

func runCorpusPrepare(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output")
	maxChunk, _ := cmd.Flags().GetInt("max-chunk-size")
	overlap, _ := cmd.Flags().GetInt("overlap")

	res, err := corpus.Prepare(corpus.PrepareOptions{
		Inputs:       args,
		OutputDir:    outputDir,
		MaxChunkSize: maxChunk,
		OverlapSize:  overlap,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s prepared %d chunks from %d articles\n",
		okStyle.Render("✓"), res.Chunks, res.Articles)
	_, _ = fmt.Fprintf(os.Stdout, "  %s\n", dimStyle.Render("manifest: "+res.ManifestPath))

	return nil
}
