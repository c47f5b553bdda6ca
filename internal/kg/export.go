package kg

import (
	"encoding/xml"
	"path/filepath"
	"strconv"

	"github.com/litkg/kgctl/internal/encoding"
)

// Artifact file names. The extractor toolchain and its consumers glob
// for these, so they are fixed.
const (
	NodesCSVName = "kg_nodes.csv"
	EdgesCSVName = "kg_edges.csv"
	GraphMLName  = "knowledge_graph.graphml"
	HTMLName     = "knowledge_graph.html"
	SVGName      = "knowledge_graph.svg"
	StatsName    = "kg_statistics.json"
)

// ExportCSV writes the node and edge tables to dir and returns their
// paths. Node rows are id, label, type, occurrences; edge rows are
// source, target, relation, weight.
func ExportCSV(g *Graph, dir string) (string, string, error) {
	nodeRows := make([][]string, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodeRows = append(nodeRows, []string{n.ID, n.ID, n.Type, strconv.Itoa(n.Occurrences)})
	}

	nodesPath := filepath.Join(dir, NodesCSVName)
	if err := encoding.WriteCSV(nodesPath, []string{"id", "label", "type", "occurrences"}, nodeRows); err != nil {
		return "", "", err
	}

	edgeRows := make([][]string, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		edgeRows = append(edgeRows, []string{e.Source, e.Target, e.Relation, formatWeight(e.Weight)})
	}

	edgesPath := filepath.Join(dir, EdgesCSVName)
	if err := encoding.WriteCSV(edgesPath, []string{"source", "target", "relation", "weight"}, edgeRows); err != nil {
		return "", "", err
	}

	return nodesPath, edgesPath, nil
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// GraphML document structure as the networkx writer lays it out, so
// Gephi and the Python tools load the file unchanged: typed key
// declarations up front, then data elements referencing them.
type graphmlDoc struct {
	XMLName        xml.Name     `xml:"graphml"`
	XMLNS          string       `xml:"xmlns,attr"`
	XMLNSXSI       string       `xml:"xmlns:xsi,attr"`
	SchemaLocation string       `xml:"xsi:schemaLocation,attr"`
	Keys           []graphmlKey `xml:"key"`
	Graph          graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	ID     string        `xml:"id,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// ExportGraphML writes the graph as GraphML. Parallel edges between
// the same pair of nodes get sequential ids, matching multigraph
// output from networkx.
func ExportGraphML(g *Graph, path string) error {
	doc := graphmlDoc{
		XMLNS:          "http://graphml.graphdrawing.org/xmlns",
		XMLNSXSI:       "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "http://graphml.graphdrawing.org/xmlns http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd",
		Graph:          graphmlGraph{EdgeDefault: "directed"},
	}

	// networkx declares keys newest first.
	if g.EdgeCount() > 0 {
		doc.Keys = append(doc.Keys,
			graphmlKey{ID: "d4", For: "edge", AttrName: "weight", AttrType: "double"},
			graphmlKey{ID: "d3", For: "edge", AttrName: "label", AttrType: "string"},
		)
	}

	if g.NodeCount() > 0 {
		doc.Keys = append(doc.Keys,
			graphmlKey{ID: "d2", For: "node", AttrName: "occurrences", AttrType: "long"},
			graphmlKey{ID: "d1", For: "node", AttrName: "label", AttrType: "string"},
			graphmlKey{ID: "d0", For: "node", AttrName: "type", AttrType: "string"},
		)
	}

	for _, n := range g.Nodes() {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: n.ID,
			Data: []graphmlData{
				{Key: "d0", Value: n.Type},
				{Key: "d1", Value: n.ID},
				{Key: "d2", Value: strconv.Itoa(n.Occurrences)},
			},
		})
	}

	pairCount := map[[2]string]int{}

	for _, e := range g.Edges() {
		pair := [2]string{e.Source, e.Target}
		id := pairCount[pair]
		pairCount[pair]++

		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: e.Source,
			Target: e.Target,
			ID:     strconv.Itoa(id),
			Data: []graphmlData{
				{Key: "d3", Value: e.Relation},
				{Key: "d4", Value: formatWeight(e.Weight)},
			},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	data := append([]byte(xml.Header), out...)
	data = append(data, '\n')

	return encoding.WriteFile(path, data, 0644)
}
