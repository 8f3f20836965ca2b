package render

import (
	"bytes"

	"github.com/gogpu/gg"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// PNGRenderer rasterizes the graph
type PNGRenderer struct{}

// Name returns the name of the renderer
func (r *PNGRenderer) Name() string {
	return "PNG Renderer"
}

// Description returns a description of the renderer
func (r *PNGRenderer) Description() string {
	return "Renders graph as an anti-aliased PNG image"
}

func (r *PNGRenderer) Extension() string { return "png" }

// Render creates a PNG image of the graph. Labels are not drawn.
func (r *PNGRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	width, height := int(options.Width), int(options.Height)
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png canvas must be positive, got %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex(orDefault(options.Background, "#ffffff")))

	view := newViewport(graph, options.Width, options.Height, options.Padding)
	index := nodeIndex(graph)

	for _, edge := range graph.Edges {
		from, to := endpoints(index, edge)
		if from == nil || to == nil {
			continue
		}
		x1, y1 := view.project(from.X, from.Y)
		x2, y2 := view.project(to.X, to.Y)

		switch edge.Style {
		case "dashed":
			dc.SetDash(5, 3)
		case "dotted":
			dc.SetDash(1, 3)
		default:
			dc.SetDash()
		}
		dc.SetHexColor(orDefault(edge.Color, "#666666"))
		dc.SetLineWidth(edgeWidth(edge, options))
		dc.DrawLine(x1, y1, x2, y2)
		if err := dc.Stroke(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "stroke edge %s", edge.ID)
		}
	}
	dc.SetDash()

	for _, node := range graph.Nodes {
		x, y := view.project(node.X, node.Y)
		dc.DrawCircle(x, y, nodeRadius(node, options))
		dc.SetHexColor(orDefault(node.Color, "#4285F4"))
		if err := dc.FillPreserve(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "fill node %s", node.ID)
		}
		dc.SetRGBA(0, 0, 0, 0.3)
		dc.SetLineWidth(0.5)
		if err := dc.Stroke(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "outline node %s", node.ID)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
