package kg

import (
	"maps"
	"slices"
)

// Node is a graph vertex keyed by entity text.
type Node struct {
	ID          string
	Type        string
	Occurrences int
}

// Edge is a directed edge between two node IDs. Parallel edges are
// allowed, so a pair of entities can be linked by several relations.
type Edge struct {
	Source   string
	Target   string
	Relation string
	Weight   float64
}

// Graph is a directed multigraph over extracted entities. Nodes keep
// insertion order so that exports are deterministic.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: map[string]*Node{}}
}

// FromDocument builds the graph for a document. Entity types are walked
// in sorted order, entities within a type in document order. Returns
// the graph and the number of relations dropped because an endpoint was
// never extracted as an entity or the relation name was empty.
func FromDocument(doc *Document) (*Graph, int) {
	g := NewGraph()

	for _, typ := range slices.Sorted(maps.Keys(doc.Entities)) {
		for _, entity := range doc.Entities[typ] {
			g.AddNode(entity.Label(), typ, entity.Count())
		}
	}

	dropped := 0

	for _, rel := range doc.Relations {
		if !g.AddEdge(rel.Source.Text, rel.Target.Text, rel.Relation, rel.Weight()) {
			dropped++
		}
	}

	return g, dropped
}

// AddNode inserts a node unless one with the same ID already exists.
// The first entity with a given text wins; later duplicates are
// ignored.
func (g *Graph) AddNode(id, entityType string, occurrences int) bool {
	if id == "" {
		return false
	}

	if _, ok := g.nodes[id]; ok {
		return false
	}

	g.nodes[id] = &Node{ID: id, Type: entityType, Occurrences: occurrences}
	g.order = append(g.order, id)

	return true
}

// AddEdge links two existing nodes. Edges with a missing endpoint or an
// empty relation name are rejected.
func (g *Graph) AddEdge(source, target, relation string, weight float64) bool {
	if source == "" || target == "" || relation == "" {
		return false
	}

	if _, ok := g.nodes[source]; !ok {
		return false
	}

	if _, ok := g.nodes[target]; !ok {
		return false
	}

	g.edges = append(g.edges, Edge{Source: source, Target: target, Relation: relation, Weight: weight})

	return true
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}

	return nodes
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges, parallel edges included.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// successors returns the adjacency lists with parallel edges collapsed,
// in edge insertion order.
func (g *Graph) successors() map[string][]string {
	seen := make(map[[2]string]bool, len(g.edges))
	succ := make(map[string][]string, len(g.order))

	for _, e := range g.edges {
		key := [2]string{e.Source, e.Target}
		if seen[key] {
			continue
		}

		seen[key] = true
		succ[e.Source] = append(succ[e.Source], e.Target)
	}

	return succ
}

// degrees counts incident edges per node. Parallel edges count every
// time and a self loop counts twice.
func (g *Graph) degrees() map[string]int {
	deg := make(map[string]int, len(g.order))
	for _, id := range g.order {
		deg[id] = 0
	}

	for _, e := range g.edges {
		deg[e.Source]++
		deg[e.Target]++
	}

	return deg
}
