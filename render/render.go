// Package render draws positioned graphs as SVG, PNG, ASCII, JSON or DOT.
//
// Renderers read node positions as left by the layout controller. Visual
// formats fit the graph's bounding box into the output canvas; JSON keeps
// the simulation coordinates so its output can be fed back into a layout.
package render

import (
	"context"
	"math"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (svg, png, ascii, json, dot)
	Width      float64 // Width of the output canvas
	Height     float64 // Height of the output canvas
	Background string  // Background color
	Padding    float64 // Margin kept free around the drawing
	NodeSize   float64 // Radius for nodes without a size
	EdgeWidth  float64 // Base stroke width
	FontSize   float64 // Font size for labels
	ShowLabels bool    // Show node labels
	Columns    int     // ASCII grid width
	Rows       int     // ASCII grid height
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render creates a visualization of the graph using the provided options
	Render(graph *models.Graph, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string

	// Extension returns the file extension for the output, without the dot
	Extension() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      800,
		Height:     600,
		Background: "#f8f8f8",
		Padding:    20,
		NodeSize:   6,
		EdgeWidth:  1,
		FontSize:   10,
		ShowLabels: true,
		Columns:    80,
		Rows:       24,
	}
}

// Formats lists the supported output formats.
func Formats() []string {
	return []string{"svg", "png", "ascii", "json", "dot"}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "png":
		return &PNGRenderer{}, nil
	case "ascii", "txt":
		return &ASCIIRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported output format: %s", format)
	}
}

// Render draws graph in the format named by options.
func Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	r, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}
	return r.Render(graph, options)
}

// RenderFormats draws graph in every format concurrently. The graph must not
// be modified until it returns. Results are keyed by format.
func RenderFormats(ctx context.Context, graph *models.Graph, base *OutputOptions, formats []string) (map[string][]byte, error) {
	for _, f := range formats {
		if _, err := GetRenderer(f); err != nil {
			return nil, err
		}
	}

	var mu sync.Mutex
	out := make(map[string][]byte, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := *base
			opts.Format = format
			data, err := Render(graph, &opts)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
			}
			mu.Lock()
			out[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// viewport maps simulation coordinates onto an output canvas, scaling the
// graph's bounding box uniformly to fit inside the padding.
type viewport struct {
	scale float64
	offX  float64
	offY  float64
}

func newViewport(graph *models.Graph, width, height, padding float64) viewport {
	v := viewport{scale: 1}
	minX, minY, maxX, maxY := graph.Bounds()
	w, h := maxX-minX, maxY-minY

	availW := math.Max(width-2*padding, 1)
	availH := math.Max(height-2*padding, 1)
	switch {
	case w > 0 && h > 0:
		v.scale = math.Min(availW/w, availH/h)
	case w > 0:
		v.scale = availW / w
	case h > 0:
		v.scale = availH / h
	}

	// Center the scaled box on the canvas.
	v.offX = (width-w*v.scale)/2 - minX*v.scale
	v.offY = (height-h*v.scale)/2 - minY*v.scale
	return v
}

func (v viewport) project(x, y float64) (float64, float64) {
	return x*v.scale + v.offX, y*v.scale + v.offY
}

// endpoints returns the nodes an edge joins, resolving by ID when the edge
// was decoded without node references.
func endpoints(index map[string]*models.Node, edge *models.Edge) (*models.Node, *models.Node) {
	if edge.From != nil && edge.To != nil {
		return edge.From, edge.To
	}
	return index[edge.Source], index[edge.Target]
}

func nodeIndex(graph *models.Graph) map[string]*models.Node {
	index := make(map[string]*models.Node, len(graph.Nodes))
	for _, n := range graph.Nodes {
		index[n.ID] = n
	}
	return index
}

func nodeRadius(node *models.Node, options *OutputOptions) float64 {
	if node.Size > 0 {
		return node.Size
	}
	return options.NodeSize
}

func edgeWidth(edge *models.Edge, options *OutputOptions) float64 {
	if edge.Weight > 0 {
		return math.Max(0.5, math.Min(edge.Weight, 4)*options.EdgeWidth)
	}
	return options.EdgeWidth
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
