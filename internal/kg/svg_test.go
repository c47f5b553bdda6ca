package kg

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportSVG(t *testing.T) {
	g, _ := FromDocument(sampleDocument())
	path := filepath.Join(t.TempDir(), "knowledge_graph.svg")

	require.NoError(t, ExportSVG(g, path, ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	require.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`))
	require.Contains(t, out, ">知识图谱</text>")
	require.Contains(t, out, `<marker id="arrow"`)
	require.Contains(t, out, `fill="#FF6666"`)

	// One circle per node, one label per node plus the title.
	require.Equal(t, 4, strings.Count(out, "<circle"))
	require.Equal(t, 5, strings.Count(out, "<text"))
}

func TestExportSVGDeterministic(t *testing.T) {
	g, _ := FromDocument(sampleDocument())
	dir := t.TempDir()

	first := filepath.Join(dir, "first.svg")
	second := filepath.Join(dir, "second.svg")

	require.NoError(t, ExportSVG(g, first, ""))
	require.NoError(t, ExportSVG(g, second, ""))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)

	require.Equal(t, a, b, "the seeded layout must not change between runs")
}

func TestExportSVGDrawsEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "药物", 1)
	g.AddNode("b", "疾病", 1)
	g.AddEdge("a", "b", "治疗", 0.8)

	path := filepath.Join(t.TempDir(), "knowledge_graph.svg")
	require.NoError(t, ExportSVG(g, path, ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	require.Equal(t, 1, strings.Count(out, "<line"))
	require.Contains(t, out, `marker-end="url(#arrow)"`)
}

func TestExportSVGSelfLoop(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "疾病", 1)
	g.AddEdge("a", "a", "相关", 0.5)

	path := filepath.Join(t.TempDir(), "knowledge_graph.svg")
	require.NoError(t, ExportSVG(g, path, ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	// The node circle plus the loop marker.
	require.Equal(t, 2, strings.Count(out, "<circle"))
	require.Contains(t, out, `fill="none"`)
}

func TestSpringLayoutBounds(t *testing.T) {
	g, _ := FromDocument(sampleDocument())

	positions := springLayout(g, layoutK, layoutIterations, layoutSeed)

	require.Len(t, positions, 4)

	for id, p := range positions {
		require.LessOrEqual(t, math.Abs(p[0]), 1.0, "node %s x out of bounds", id)
		require.LessOrEqual(t, math.Abs(p[1]), 1.0, "node %s y out of bounds", id)
	}
}

func TestSpringLayoutSingleNode(t *testing.T) {
	g := NewGraph()
	g.AddNode("only", "疾病", 1)

	positions := springLayout(g, layoutK, layoutIterations, layoutSeed)

	require.Equal(t, [2]float64{0, 0}, positions["only"])
}

func TestSpringLayoutEmptyGraph(t *testing.T) {
	positions := springLayout(NewGraph(), layoutK, layoutIterations, layoutSeed)

	require.Empty(t, positions)
}

func TestNodeRadiusGrowsWithOccurrences(t *testing.T) {
	require.Greater(t, nodeRadius(10), nodeRadius(1))
	require.InDelta(t, math.Sqrt(120/math.Pi), nodeRadius(1), 1e-9)
}
