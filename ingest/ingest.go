// Package ingest turns JSON, CSV and plain-text edge lists into graphs ready
// for layout. Every processor gives nodes a palette color, a size and a mass
// derived from their degree, and scatters nodes without a position across
// the canvas so the simulation never starts from coincident points.
package ingest

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns a graph
	ProcessData(data []byte) (*models.Graph, error)

	// GetName returns the name of the processor
	GetName() string
}

// Options shape the graphs produced by a processor.
type Options struct {
	Palette *Palette
	Width   float64
	Height  float64
	Seed    int64
}

// DefaultOptions returns an 800x600 canvas with the default palette.
func DefaultOptions() Options {
	return Options{
		Palette: DefaultPalette(),
		Width:   800,
		Height:  600,
		Seed:    1,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Palette == nil {
		o.Palette = d.Palette
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

// Palette provides color schemes for graph visualization
type Palette struct {
	NodeColors []string
	EdgeColors []string
	Background string
}

// DefaultPalette returns a default color palette with vibrant colors
func DefaultPalette() *Palette {
	return &Palette{
		NodeColors: []string{
			"#4285F4", // Blue
			"#EA4335", // Red
			"#FBBC05", // Yellow
			"#34A853", // Green
			"#673AB7", // Purple
			"#3F51B5", // Indigo
			"#00BCD4", // Cyan
			"#009688", // Teal
			"#FF5722", // Deep Orange
		},
		EdgeColors: []string{
			"#666666",
			"#888888",
			"#AAAAAA",
		},
		Background: "#f8f8f8",
	}
}

// SurrealPalette returns a high-contrast palette on a dark background
func SurrealPalette() *Palette {
	return &Palette{
		NodeColors: []string{
			"#FF6D00", // Amber
			"#2979FF", // Blue
			"#00E676", // Green
			"#F50057", // Pink
			"#651FFF", // Deep Purple
			"#C6FF00", // Lime
			"#FF3D00", // Deep Orange
			"#00B0FF", // Light Blue
			"#76FF03", // Light Green
		},
		EdgeColors: []string{
			"#333333",
			"#9C27B0",
			"#00BFA5",
		},
		Background: "#212121",
	}
}

// Size bounds for nodes whose size comes from their degree.
const (
	baseNodeSize = 6.0
	minNodeSize  = 4.0
	maxNodeSize  = 16.0
)

// builder accumulates nodes and edges for one processor run.
type builder struct {
	opts   Options
	graph  *models.Graph
	byID   map[string]*models.Node
	placed map[*models.Node]bool
	sized  map[*models.Node]bool
	massed map[*models.Node]bool
}

func newBuilder(name string, opts Options) *builder {
	opts = opts.withDefaults()
	g := models.NewGraph(name)
	g.SetDimensions(opts.Width, opts.Height)
	g.Background = opts.Palette.Background
	return &builder{
		opts:   opts,
		graph:  g,
		byID:   make(map[string]*models.Node),
		placed: make(map[*models.Node]bool),
		sized:  make(map[*models.Node]bool),
		massed: make(map[*models.Node]bool),
	}
}

// node returns the node with id, creating it with a palette color on first
// use.
func (b *builder) node(id, label string) *models.Node {
	if n, ok := b.byID[id]; ok {
		return n
	}
	if label == "" {
		label = id
	}
	n := models.NewNode("default", label, nil)
	n.ID = id
	colors := b.opts.Palette.NodeColors
	n.Color = colors[len(b.graph.Nodes)%len(colors)]
	b.graph.AddNode(n)
	b.byID[id] = n
	return n
}

func (b *builder) edge(source, target *models.Node, weight float64) *models.Edge {
	e := models.NewEdge(source.ID, target.ID, "default", weight, nil)
	e.From, e.To = source, target
	colors := b.opts.Palette.EdgeColors
	e.Color = colors[len(b.graph.Edges)%len(colors)]
	b.graph.Edges = append(b.graph.Edges, e)
	return e
}

// finish fills in the layout defaults: size and mass from degree, radius
// from size, and a starting position for every node without one.
func (b *builder) finish() *models.Graph {
	degrees := b.graph.Degrees()
	for _, n := range b.graph.Nodes {
		deg := float64(degrees[n.ID])
		if !b.sized[n] {
			n.Size = math.Min(maxNodeSize, math.Max(minNodeSize, baseNodeSize+math.Sqrt(deg)*2))
		}
		if !b.massed[n] {
			n.Mass = 1 + deg
		}
		if n.Radius <= 0 {
			n.Radius = n.Size
		}
	}
	b.scatter()
	return b.graph
}

// scatter places unpositioned nodes on a sunflower spiral around the canvas
// center, nudged by seeded noise. Consecutive nodes land far apart and no
// two share a point.
func (b *builder) scatter() {
	var pending []*models.Node
	for _, n := range b.graph.Nodes {
		if !b.placed[n] {
			pending = append(pending, n)
		}
	}
	if len(pending) == 0 {
		return
	}

	const goldenAngle = 2.399963229728653
	noise := opensimplex.New(b.opts.Seed)
	cx, cy := b.opts.Width/2, b.opts.Height/2
	radius := 0.4 * math.Min(b.opts.Width, b.opts.Height)
	count := float64(len(pending))

	for i, n := range pending {
		fi := float64(i)
		r := radius * math.Sqrt((fi+0.5)/count)
		theta := fi*goldenAngle + 0.3*noise.Eval2(fi*0.61, 0.5)
		r *= 1 + 0.05*noise.Eval2(0.5, fi*0.61)
		n.SetPosition(cx+r*math.Cos(theta), cy+r*math.Sin(theta))
	}
}

// GetProcessor returns the appropriate processor for the given format
func GetProcessor(format string, opts Options) (DataProcessor, error) {
	name := strings.ToLower(format)
	if base, ok := strings.CutPrefix(name, "surreal-"); ok {
		opts.Palette = SurrealPalette()
		name = base
	}
	switch name {
	case "json":
		return NewJSONProcessor(opts), nil
	case "csv":
		return NewCSVProcessor(opts), nil
	case "log", "txt":
		return NewLogProcessor(opts), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported input format: %s", format)
	}
}

// DetectFormat guesses the input format from a file extension. Unknown
// extensions are treated as JSON.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".log", ".txt":
		return "log"
	default:
		return "json"
	}
}

// LoadFile reads path and parses it with the processor for format, or with
// the format detected from the extension when format is empty.
func LoadFile(path, format string, opts Options) (*models.Graph, error) {
	if format == "" {
		format = DetectFormat(path)
	}
	p, err := GetProcessor(format, opts)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	g, err := p.ProcessData(data)
	if err != nil {
		return nil, err
	}
	if g.Name == "" || strings.HasSuffix(g.Name, " Import") {
		g.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return g, nil
}
