package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
	"github.com/litkg/kgctl/internal/kg"
	"github.com/litkg/kgctl/internal/model"
)

var graphMergeCmd = &cobra.Command{
	Use:   "merge <file|dir>...",
	Short: "Merge knowledge-graph files into one document",
	Long: `Combines knowledge-graph JSON files into a single document. Entities
with the same normalized text and type are merged by summing their
occurrence counts; duplicate relations keep the highest confidence
seen. Directories are scanned for knowledge_graph.json, *_graph.json,
and entities.json/relations.json pairs.

Writes the merged JSON plus entity and relation CSVs (UTF-8 with BOM,
so spreadsheets open the Chinese labels correctly).

Examples:
  kgctl graph merge output/batch_run_20240101_120000 --recursive
  kgctl graph merge a.json b.json -o merged.json
  kgctl graph merge output --min-confidence 0.6 --max-entities 100`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGraphMerge,
}

func init() {
	graphCmd.AddCommand(graphMergeCmd)
	graphMergeCmd.Flags().StringP("output", "o", kg.DefaultMergedName, "Merged JSON output path")
	graphMergeCmd.Flags().BoolP("recursive", "r", false, "Scan directories recursively")
	graphMergeCmd.Flags().Float64("min-confidence", 0, "Drop relations below this confidence")
	graphMergeCmd.Flags().Int("max-entities", 0, "Keep only the most frequent entities per type (0 for all)")
	graphMergeCmd.Flags().StringSlice("types", nil, "Only merge these entity types")
}

func runGraphMerge(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	output, _ := flags.GetString("output")
	recursive, _ := flags.GetBool("recursive")
	minConfidence, _ := flags.GetFloat64("min-confidence")
	maxEntities, _ := flags.GetInt("max-entities")
	types, _ := flags.GetStringSlice("types")

	st := openStore()
	defer closeStore(st)

	run := core.StartRun(st, model.RunKindMerge, "")

	_, res, err := kg.Merge(kg.MergeOptions{
		Inputs:        args,
		Output:        output,
		Recursive:     recursive,
		MinConfidence: minConfidence,
		MaxEntities:   maxEntities,
		EntityTypes:   types,
	})
	if err != nil {
		core.FinishRun(st, run, nil, err)

		return err
	}

	core.FinishRun(st, run, map[string]int{
		"files":     res.Files,
		"entities":  res.Entities,
		"relations": res.Relations,
	}, nil)

	_, _ = fmt.Fprintf(os.Stdout, "%s merged %d files: %d entities, %d relations\n",
		okStyle.Render("✓"), res.Files, res.Entities, res.Relations)

	for _, f := range []string{res.Output, res.EntitiesCSV, res.RelationsCSV} {
		_, _ = fmt.Fprintf(os.Stdout, "  %s\n", dimStyle.Render(f))
	}

	return nil
}
