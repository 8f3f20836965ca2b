package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/TFMV/forcegraph/models"
)

// DOTRenderer outputs Graphviz DOT with pinned positions
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders graph in Graphviz DOT format; positions are pinned for neato -n"
}

func (r *DOTRenderer) Extension() string { return "dot" }

// Render creates a DOT representation of the graph. Positions are in points
// with the origin at the bottom left, as Graphviz expects.
func (r *DOTRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	view := newViewport(graph, options.Width, options.Height, options.Padding)

	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%s, bb=\"0,0,%.0f,%.0f\"];\n",
		strconv.Quote(options.Background), options.Width, options.Height)
	fmt.Fprintf(&buf, "  node [shape=circle, fontname=\"Arial\", fontsize=%.0f];\n", options.FontSize)

	for _, node := range graph.Nodes {
		x, y := view.project(node.X, node.Y)
		label := node.Label
		if label == "" {
			label = node.ID
		}
		fmt.Fprintf(&buf, "  %s [label=%s, color=%s, width=%.3f, pos=\"%.2f,%.2f!\"];\n",
			strconv.Quote(node.ID), strconv.Quote(label), strconv.Quote(orDefault(node.Color, "#4285F4")),
			2*nodeRadius(node, options)/72, x, options.Height-y)
	}

	for _, edge := range graph.Edges {
		weight := edge.Weight
		if weight <= 0 {
			weight = 1
		}
		fmt.Fprintf(&buf, "  %s -> %s [color=%s, weight=%g, style=%s];\n",
			strconv.Quote(edge.Source), strconv.Quote(edge.Target),
			strconv.Quote(orDefault(edge.Color, "#666666")), weight, orDefault(edge.Style, "solid"))
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
