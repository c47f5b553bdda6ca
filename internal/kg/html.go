package kg

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/litkg/kgctl/internal/encoding"
)

//go:embed templates/graph.html.tmpl
var templatesFS embed.FS

var graphTemplate = template.Must(template.ParseFS(templatesFS, "templates/graph.html.tmpl"))

// DefaultTitle is used for visualizations when no title is given.
const DefaultTitle = "知识图谱"

// nodeColors maps entity types to display colors. The extractor emits
// Chinese type names, older runs emitted English ones, so both spell
// the same palette.
var nodeColors = map[string]string{
	"疾病":                "#FF6666",
	"Disease":           "#FF6666",
	"药物":                "#66CC66",
	"Drug":              "#66CC66",
	"靶点":                "#6666FF",
	"Target":            "#6666FF",
	"生物过程":              "#FFCC66",
	"BiologicalProcess": "#FFCC66",
	"基因":                "#66CCFF",
	"Gene":              "#66CCFF",
	"蛋白质":               "#CC66CC",
	"Protein":           "#CC66CC",
	"生物标志物":             "#CCCC66",
	"Biomarker":         "#CCCC66",
}

const defaultNodeColor = "#AAAAAA"

// nodeColor returns the display color for an entity type.
func nodeColor(entityType string) string {
	if c, ok := nodeColors[entityType]; ok {
		return c
	}

	return defaultNodeColor
}

// visNode and visEdge are the vis-network dataset rows embedded in the
// HTML page.
type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Color string `json:"color"`
	Size  int    `json:"size"`
}

type visEdge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Label string  `json:"label"`
	Title string  `json:"title"`
	Width float64 `json:"width"`
}

type graphPage struct {
	Title string
	Nodes []visNode
	Edges []visEdge
}

// ExportHTML writes an interactive vis-network page for the graph.
// Node size grows with occurrences, edge width with confidence.
func ExportHTML(g *Graph, path, title string) error {
	if title == "" {
		title = DefaultTitle
	}

	// Empty slices render as [] rather than null in the script block.
	page := graphPage{Title: title, Nodes: []visNode{}, Edges: []visEdge{}}

	for _, n := range g.Nodes() {
		page.Nodes = append(page.Nodes, visNode{
			ID:    n.ID,
			Label: n.ID,
			Title: fmt.Sprintf("类型: %s<br>出现次数: %d", n.Type, n.Occurrences),
			Color: nodeColor(n.Type),
			Size:  20 + n.Occurrences*5,
		})
	}

	for _, e := range g.Edges() {
		page.Edges = append(page.Edges, visEdge{
			From:  e.Source,
			To:    e.Target,
			Label: e.Relation,
			Title: fmt.Sprintf("关系: %s<br>置信度: %.2f", e.Relation, e.Weight),
			Width: 1 + e.Weight*5,
		})
	}

	var buf bytes.Buffer
	if err := graphTemplate.Execute(&buf, page); err != nil {
		return fmt.Errorf("failed to render graph page: %w", err)
	}

	return encoding.WriteFile(path, buf.Bytes(), 0644)
}
