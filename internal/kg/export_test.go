package kg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	g, _ := FromDocument(sampleDocument())
	dir := t.TempDir()

	nodesPath, edgesPath, err := ExportCSV(g, dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "kg_nodes.csv"), nodesPath)
	require.Equal(t, filepath.Join(dir, "kg_edges.csv"), edgesPath)

	nodes, err := os.ReadFile(nodesPath)
	require.NoError(t, err)

	wantNodes := "id,label,type,occurrences\n" +
		"矽肺病,矽肺病,疾病,12\n" +
		"肺结核,肺结核,疾病,4\n" +
		"汉防己甲素,汉防己甲素,药物,1\n" +
		"TNF-α,TNF-α,蛋白质,8\n"
	require.Equal(t, wantNodes, string(nodes))

	edges, err := os.ReadFile(edgesPath)
	require.NoError(t, err)

	wantEdges := "source,target,relation,weight\n" +
		"TNF-α,矽肺病,相关,0.9\n" +
		"汉防己甲素,矽肺病,治疗,0.8\n" +
		"肺结核,矽肺病,相关,0.5\n"
	require.Equal(t, wantEdges, string(edges))
}

func TestExportGraphML(t *testing.T) {
	g, _ := FromDocument(sampleDocument())
	path := filepath.Join(t.TempDir(), "knowledge_graph.graphml")

	require.NoError(t, ExportGraphML(g, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	require.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	require.Contains(t, out, `<graphml xmlns="http://graphml.graphdrawing.org/xmlns"`)
	require.Contains(t, out, `xsi:schemaLocation="http://graphml.graphdrawing.org/xmlns http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd"`)

	// Typed key declarations, edge keys first.
	require.Contains(t, out, `<key id="d4" for="edge" attr.name="weight" attr.type="double">`)
	require.Contains(t, out, `<key id="d3" for="edge" attr.name="label" attr.type="string">`)
	require.Contains(t, out, `<key id="d2" for="node" attr.name="occurrences" attr.type="long">`)
	require.Contains(t, out, `<key id="d1" for="node" attr.name="label" attr.type="string">`)
	require.Contains(t, out, `<key id="d0" for="node" attr.name="type" attr.type="string">`)
	require.Less(t, strings.Index(out, `id="d4"`), strings.Index(out, `id="d0"`))

	require.Contains(t, out, `<graph edgedefault="directed">`)
	require.Contains(t, out, `<node id="矽肺病">`)
	require.Contains(t, out, `<data key="d0">疾病</data>`)
	require.Contains(t, out, `<data key="d2">12</data>`)
	require.Contains(t, out, `<edge source="TNF-α" target="矽肺病" id="0">`)
	require.Contains(t, out, `<data key="d3">相关</data>`)
	require.Contains(t, out, `<data key="d4">0.9</data>`)
}

func TestExportGraphMLParallelEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "药物", 1)
	g.AddNode("b", "疾病", 1)
	g.AddEdge("a", "b", "治疗", 0.8)
	g.AddEdge("a", "b", "相关", 0.4)

	path := filepath.Join(t.TempDir(), "knowledge_graph.graphml")
	require.NoError(t, ExportGraphML(g, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	// Parallel edges get sequential ids so multigraph readers keep both.
	require.Contains(t, out, `<edge source="a" target="b" id="0">`)
	require.Contains(t, out, `<edge source="a" target="b" id="1">`)
}

func TestExportGraphMLEmptyGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge_graph.graphml")
	require.NoError(t, ExportGraphML(NewGraph(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	require.NotContains(t, out, "<key")
	require.Contains(t, out, `<graph edgedefault="directed">`)
}

func TestFormatWeight(t *testing.T) {
	require.Equal(t, "0.9", formatWeight(0.9))
	require.Equal(t, "0.5", formatWeight(0.5))
	require.Equal(t, "1", formatWeight(1))
	require.Equal(t, "0.75", formatWeight(0.75))
}
