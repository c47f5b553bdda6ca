package kg

import (
	"fmt"
	"html"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/litkg/kgctl/internal/encoding"
)

// Layout and canvas parameters for the static visualization. The fixed
// seed keeps node placement stable across runs on the same graph.
const (
	layoutK          = 0.3
	layoutIterations = 50
	layoutSeed       = 42

	svgWidth  = 1200.0
	svgHeight = 1000.0
	svgMargin = 80.0
)

// ExportSVG writes a static picture of the graph, laid out with a
// seeded Fruchterman-Reingold simulation. Node area grows with
// occurrences and edge width with confidence.
func ExportSVG(g *Graph, path, title string) error {
	if title == "" {
		title = DefaultTitle
	}

	positions := springLayout(g, layoutK, layoutIterations, layoutSeed)

	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		svgWidth, svgHeight, svgWidth, svgHeight)
	b.WriteString(`  <rect width="100%" height="100%" fill="#ffffff"/>` + "\n")
	b.WriteString("  <defs>\n")
	b.WriteString(`    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">` + "\n")
	b.WriteString(`      <path d="M 0 0 L 10 5 L 0 10 z" fill="#999999"/>` + "\n")
	b.WriteString("    </marker>\n  </defs>\n")
	fmt.Fprintf(&b, `  <text x="%.0f" y="40" text-anchor="middle" font-family="Arial" font-size="20" font-weight="bold" fill="#000000">%s</text>`+"\n",
		svgWidth/2, html.EscapeString(title))

	for _, e := range g.Edges() {
		writeEdge(&b, g, positions, e)
	}

	for _, n := range g.Nodes() {
		x, y := canvasXY(positions[n.ID])
		fmt.Fprintf(&b, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.8" stroke="#333333"/>`+"\n",
			x, y, nodeRadius(n.Occurrences), nodeColor(n.Type))
	}

	for _, n := range g.Nodes() {
		x, y := canvasXY(positions[n.ID])
		fmt.Fprintf(&b, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="Arial" font-size="11" fill="#333333">%s</text>`+"\n",
			x, y-nodeRadius(n.Occurrences)-4, html.EscapeString(n.ID))
	}

	b.WriteString("</svg>\n")

	return encoding.WriteFile(path, []byte(b.String()), 0644)
}

func writeEdge(b *strings.Builder, g *Graph, positions map[string][2]float64, e Edge) {
	width := 1 + e.Weight*2

	sx, sy := canvasXY(positions[e.Source])
	tx, ty := canvasXY(positions[e.Target])

	source, _ := g.Node(e.Source)
	target, _ := g.Node(e.Target)

	if e.Source == e.Target {
		// Self loop drawn as a small circle above the node.
		r := nodeRadius(source.Occurrences)
		fmt.Fprintf(b, `  <circle cx="%.1f" cy="%.1f" r="10" fill="none" stroke="#999999" stroke-width="%.2f" opacity="0.5"/>`+"\n",
			sx, sy-r-10, width)

		return
	}

	dx := tx - sx
	dy := ty - sy
	dist := math.Hypot(dx, dy)

	// Shorten the line so the arrowhead stops at the node boundary.
	sr := nodeRadius(source.Occurrences) + 2
	tr := nodeRadius(target.Occurrences) + 2
	if dist <= sr+tr {
		return
	}

	ux := dx / dist
	uy := dy / dist

	fmt.Fprintf(b, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#999999" stroke-width="%.2f" opacity="0.5" marker-end="url(#arrow)"/>`+"\n",
		sx+ux*sr, sy+uy*sr, tx-ux*tr, ty-uy*tr, width)
}

// nodeRadius converts an occurrence count to a circle radius so that
// node area grows linearly with occurrences.
func nodeRadius(occurrences int) float64 {
	return math.Sqrt((100 + float64(occurrences)*20) / math.Pi)
}

// canvasXY maps a layout position in [-1, 1] onto the drawing area.
func canvasXY(p [2]float64) (float64, float64) {
	x := svgMargin + (p[0]+1)/2*(svgWidth-2*svgMargin)
	y := svgMargin + (p[1]+1)/2*(svgHeight-2*svgMargin)

	return x, y
}

// springLayout runs a Fruchterman-Reingold simulation over the graph.
// Positions come back centered on the origin and scaled to [-1, 1].
// Attraction follows edge direction with parallel edge weights summed,
// repulsion applies between every pair of nodes.
func springLayout(g *Graph, k float64, iterations int, seed uint64) map[string][2]float64 {
	positions := make(map[string][2]float64, len(g.order))

	n := len(g.order)
	if n == 0 {
		return positions
	}

	if n == 1 {
		positions[g.order[0]] = [2]float64{0, 0}
		return positions
	}

	rng := rand.New(rand.NewPCG(seed, 0))

	pos := make([][2]float64, n)
	for i := range pos {
		pos[i] = [2]float64{rng.Float64(), rng.Float64()}
	}

	index := make(map[string]int, n)
	for i, id := range g.order {
		index[id] = i
	}

	attract := make(map[[2]int]float64, len(g.edges))
	for _, e := range g.edges {
		attract[[2]int{index[e.Source], index[e.Target]}] += e.Weight
	}

	temp := 0.1
	cool := temp / float64(iterations+1)
	disp := make([][2]float64, n)

	for range iterations {
		for i := range disp {
			disp[i] = [2]float64{}
		}

		for i := range n {
			for j := range n {
				if i == j {
					continue
				}

				dx := pos[i][0] - pos[j][0]
				dy := pos[i][1] - pos[j][1]

				dist := math.Hypot(dx, dy)
				if dist < 0.01 {
					dist = 0.01
				}

				force := k*k/(dist*dist) - attract[[2]int{i, j}]*dist/k
				disp[i][0] += dx * force
				disp[i][1] += dy * force
			}
		}

		for i := range n {
			length := math.Hypot(disp[i][0], disp[i][1])
			if length < 0.01 {
				length = 0.01
			}

			step := math.Min(length, temp)
			pos[i][0] += disp[i][0] / length * step
			pos[i][1] += disp[i][1] / length * step
		}

		temp -= cool
	}

	var mx, my float64
	for _, p := range pos {
		mx += p[0]
		my += p[1]
	}
	mx /= float64(n)
	my /= float64(n)

	lim := 0.0
	for i := range pos {
		pos[i][0] -= mx
		pos[i][1] -= my
		lim = math.Max(lim, math.Max(math.Abs(pos[i][0]), math.Abs(pos[i][1])))
	}

	if lim > 0 {
		for i := range pos {
			pos[i][0] /= lim
			pos[i][1] /= lim
		}
	}

	for i, id := range g.order {
		positions[id] = pos[i]
	}

	return positions
}
