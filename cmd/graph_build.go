package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
	"github.com/litkg/kgctl/internal/kg"
	"github.com/litkg/kgctl/internal/model"
)

var graphBuildCmd = &cobra.Command{
	Use:   "build <knowledge_graph.json>",
	Short: "Export visualizations and statistics from a knowledge graph",
	Long: `Loads a knowledge-graph JSON document and writes the selected
artifacts: node/edge CSVs, GraphML, an interactive HTML page, a static
SVG, and a statistics file with centrality rankings. --all enables
everything.

Examples:
  kgctl graph build output/knowledge_graph.json --all
  kgctl graph build kg.json --html --title "Silicosis Literature"
  kgctl graph build kg.json --stats -o report`,
	Args: cobra.ExactArgs(1),
	RunE: runGraphBuild,
}

func init() {
	graphCmd.AddCommand(graphBuildCmd)
	graphBuildCmd.Flags().StringP("output", "o", "", "Output directory (default: next to the input)")
	graphBuildCmd.Flags().String("title", kg.DefaultTitle, "Title for the HTML and SVG visualizations")
	graphBuildCmd.Flags().Bool("csv", false, "Write node and edge CSV files")
	graphBuildCmd.Flags().Bool("graphml", false, "Write a GraphML file")
	graphBuildCmd.Flags().Bool("html", false, "Write the interactive HTML visualization")
	graphBuildCmd.Flags().Bool("svg", false, "Write the static SVG visualization")
	graphBuildCmd.Flags().Bool("stats", false, "Write kg_statistics.json and show the summary")
	graphBuildCmd.Flags().Bool("all", false, "Write every artifact")
	graphBuildCmd.Flags().String("stats-format", "table", "Statistics view format (table, yaml)")
}

func runGraphBuild(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	outputDir, _ := flags.GetString("output")
	title, _ := flags.GetString("title")
	csv, _ := flags.GetBool("csv")
	graphml, _ := flags.GetBool("graphml")
	html, _ := flags.GetBool("html")
	svg, _ := flags.GetBool("svg")
	stats, _ := flags.GetBool("stats")
	all, _ := flags.GetBool("all")

	st := openStore()
	defer closeStore(st)

	run := core.StartRun(st, model.RunKindBuild, "")
	run.OutputDir = outputDir

	res, err := kg.Build(kg.BuildOptions{
		Input:     args[0],
		OutputDir: outputDir,
		Title:     title,
		CSV:       csv,
		GraphML:   graphml,
		HTML:      html,
		SVG:       svg,
		Stats:     stats,
		All:       all,
	})
	if err != nil {
		core.FinishRun(st, run, nil, err)

		return err
	}

	core.FinishRun(st, run, map[string]int{
		"nodes": res.Nodes,
		"edges": res.Edges,
		"files": len(res.Files),
	}, nil)

	_, _ = fmt.Fprintf(os.Stdout, "%s graph with %d nodes and %d edges", okStyle.Render("✓"), res.Nodes, res.Edges)

	if res.Dropped > 0 {
		_, _ = fmt.Fprintf(os.Stdout, " (%d relations dropped for missing endpoints)", res.Dropped)
	}

	_, _ = fmt.Fprintln(os.Stdout)

	for _, f := range res.Files {
		_, _ = fmt.Fprintf(os.Stdout, "  %s\n", dimStyle.Render(f))
	}

	if res.Stats != nil {
		statsFormat, _ := flags.GetString("stats-format")

		return renderGraphStats(res.Stats, statsFormat)
	}

	return nil
}

func renderGraphStats(stats *kg.Stats, format string) error {
	if format == "yaml" {
		return printYAML(stats)
	}

	_, _ = fmt.Fprintf(os.Stdout, "\nnodes: %d, edges: %d, density: %.4f\n",
		stats.Nodes, stats.Edges, stats.Density)

	table := newTable(os.Stdout, []string{"Node", "Degree Centrality"})
	for _, s := range stats.TopDegree {
		table.Append([]string{s.Node, fmt.Sprintf("%.4f", s.Score)})
	}

	table.Render()

	return nil
}
