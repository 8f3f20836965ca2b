package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/TFMV/forcegraph/models"
)

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders graphs as Scalable Vector Graphics (SVG) for high-quality vector output"
}

func (r *SVGRenderer) Extension() string { return "svg" }

// Render creates an SVG representation of the graph
func (r *SVGRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	view := newViewport(graph, options.Width, options.Height, options.Padding)
	index := nodeIndex(graph)

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, options.Width, options.Height, options.Width, options.Height, html.EscapeString(options.Background))

	buf.WriteString("<g class=\"edges\">\n")
	for _, edge := range graph.Edges {
		from, to := endpoints(index, edge)
		if from == nil || to == nil {
			continue
		}
		x1, y1 := view.project(from.X, from.Y)
		x2, y2 := view.project(to.X, to.Y)

		dash := ""
		switch edge.Style {
		case "dashed":
			dash = ` stroke-dasharray="5,3"`
		case "dotted":
			dash = ` stroke-dasharray="1,3"`
		}
		fmt.Fprintf(&buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"%s/>
`, x1, y1, x2, y2, html.EscapeString(orDefault(edge.Color, "#666666")), edgeWidth(edge, options), dash)
	}
	buf.WriteString("</g>\n<g class=\"nodes\">\n")

	for _, node := range graph.Nodes {
		x, y := view.project(node.X, node.Y)
		radius := nodeRadius(node, options)
		fmt.Fprintf(&buf, `<circle id="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="rgba(0,0,0,0.3)" stroke-width="0.5"/>
`, html.EscapeString(node.ID), x, y, radius, html.EscapeString(orDefault(node.Color, "#4285F4")))

		if options.ShowLabels && node.Label != "" {
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.0f" fill="#333333" text-anchor="middle">%s</text>
`, x, y+radius+options.FontSize+2, options.FontSize, html.EscapeString(node.Label))
		}
	}
	buf.WriteString("</g>\n</svg>\n")

	return buf.Bytes(), nil
}
