package kg

import (
	"math"
	"sort"
)

// topNodeCount caps the per-node rankings in the statistics report.
const topNodeCount = 10

// unknownLabel buckets nodes and edges whose type or relation name is
// empty.
const unknownLabel = "未知"

// DegreeScore ranks a node by normalized degree centrality.
type DegreeScore struct {
	Node  string  `json:"节点" yaml:"node"`
	Score float64 `json:"度数中心性" yaml:"degree_centrality"`
}

// BetweennessScore ranks a node by normalized betweenness centrality.
type BetweennessScore struct {
	Node  string  `json:"节点" yaml:"node"`
	Score float64 `json:"中介中心性" yaml:"betweenness_centrality"`
}

// Stats summarizes a graph. The JSON field names are the ones the
// extractor toolchain has always written to kg_statistics.json, so
// downstream readers of that file keep working. The YAML names serve
// the human-readable report.
type Stats struct {
	Nodes          int                `json:"节点总数" yaml:"nodes"`
	Edges          int                `json:"边总数" yaml:"edges"`
	Density        float64            `json:"图密度" yaml:"density"`
	NodeTypes      map[string]int     `json:"节点类型统计" yaml:"node_types"`
	RelationTypes  map[string]int     `json:"关系类型统计" yaml:"relation_types"`
	TopDegree      []DegreeScore      `json:"度数最高的节点" yaml:"top_degree"`
	TopBetweenness []BetweennessScore `json:"中心性最高的节点" yaml:"top_betweenness"`
}

// ComputeStats derives the statistics report for a graph. Centrality
// scores are rounded to three decimals and the rankings keep the ten
// highest-scoring nodes, ties broken by node name.
func ComputeStats(g *Graph) *Stats {
	stats := &Stats{
		Nodes:         g.NodeCount(),
		Edges:         g.EdgeCount(),
		Density:       density(g),
		NodeTypes:     map[string]int{},
		RelationTypes: map[string]int{},
	}

	for _, n := range g.Nodes() {
		typ := n.Type
		if typ == "" {
			typ = unknownLabel
		}

		stats.NodeTypes[typ]++
	}

	for _, e := range g.Edges() {
		rel := e.Relation
		if rel == "" {
			rel = unknownLabel
		}

		stats.RelationTypes[rel]++
	}

	for node, score := range topScores(degreeCentrality(g), g.order) {
		stats.TopDegree = append(stats.TopDegree, DegreeScore{Node: node, Score: score})
	}

	for node, score := range topScores(betweennessCentrality(g), g.order) {
		stats.TopBetweenness = append(stats.TopBetweenness, BetweennessScore{Node: node, Score: score})
	}

	return stats
}

// density returns edges / (n * (n-1)). With parallel edges the value
// can exceed 1.
func density(g *Graph) float64 {
	n := float64(g.NodeCount())
	if n < 2 {
		return 0
	}

	return float64(g.EdgeCount()) / (n * (n - 1))
}

// degreeCentrality normalizes each node's degree by n-1. A graph with
// a single node scores it 1.
func degreeCentrality(g *Graph) map[string]float64 {
	n := g.NodeCount()
	scores := make(map[string]float64, n)

	if n <= 1 {
		for _, id := range g.order {
			scores[id] = 1
		}

		return scores
	}

	for id, deg := range g.degrees() {
		scores[id] = float64(deg) / float64(n-1)
	}

	return scores
}

// betweennessCentrality runs Brandes' algorithm on the simple directed
// projection of the graph (parallel edges collapsed, unit edge
// lengths). Scores are normalized by (n-1)(n-2) when the graph has
// more than two nodes.
func betweennessCentrality(g *Graph) map[string]float64 {
	succ := g.successors()

	scores := make(map[string]float64, len(g.order))
	for _, id := range g.order {
		scores[id] = 0
	}

	for _, source := range g.order {
		stack, preds, sigma := shortestPaths(source, g.order, succ)

		delta := make(map[string]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}

			if w != source {
				scores[w] += delta[w]
			}
		}
	}

	n := float64(len(g.order))
	if n > 2 {
		scale := 1 / ((n - 1) * (n - 2))
		for id := range scores {
			scores[id] *= scale
		}
	}

	return scores
}

// shortestPaths runs a breadth-first search from source, returning the
// visit order, the shortest-path predecessors, and the shortest-path
// counts needed by the Brandes accumulation step.
func shortestPaths(source string, order []string, succ map[string][]string) ([]string, map[string][]string, map[string]float64) {
	dist := make(map[string]int, len(order))
	for _, id := range order {
		dist[id] = -1
	}

	sigma := make(map[string]float64, len(order))
	preds := make(map[string][]string, len(order))

	dist[source] = 0
	sigma[source] = 1

	var stack []string

	queue := []string{source}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)

		for _, w := range succ[v] {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}

			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				preds[w] = append(preds[w], v)
			}
		}
	}

	return stack, preds, sigma
}

// topScores yields the ten highest-scoring nodes in descending score
// order, rounded to three decimals.
func topScores(scores map[string]float64, order []string) func(yield func(string, float64) bool) {
	ranked := make([]string, len(order))
	copy(ranked, order)

	sort.SliceStable(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}

		return ranked[i] < ranked[j]
	})

	if len(ranked) > topNodeCount {
		ranked = ranked[:topNodeCount]
	}

	return func(yield func(string, float64) bool) {
		for _, node := range ranked {
			if !yield(node, math.Round(scores[node]*1000)/1000) {
				return
			}
		}
	}
}
