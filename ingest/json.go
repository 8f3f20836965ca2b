package ingest

import (
	"encoding/json"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// JSONProcessor handles JSON graphs of the form
//
//	{"nodes": [{"id": "a", "x": 1, "y": 2}], "edges": [{"source": "a", "target": "b"}]}
//
// Positions, mass, radius and size are optional per node; edge weight
// defaults to 1.
type JSONProcessor struct {
	opts Options
}

// NewJSONProcessor creates a new JSON processor
func NewJSONProcessor(opts Options) *JSONProcessor {
	return &JSONProcessor{opts: opts}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

type jsonNode struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Type   string         `json:"type"`
	Color  string         `json:"color"`
	Size   *float64       `json:"size"`
	X      *float64       `json:"x"`
	Y      *float64       `json:"y"`
	Mass   *float64       `json:"mass"`
	Radius float64        `json:"radius"`
	Fixed  bool           `json:"fixed"`
	Data   map[string]any `json:"data"`
}

type jsonEdge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   string   `json:"type"`
	Weight *float64 `json:"weight"`
	Color  string   `json:"color"`
	Style  string   `json:"style"`
}

type jsonGraph struct {
	Name   string     `json:"name"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Nodes  []jsonNode `json:"nodes"`
	Edges  []jsonEdge `json:"edges"`
}

// ProcessData processes JSON data
func (p *JSONProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var in jsonGraph
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse JSON graph")
	}

	opts := p.opts
	if in.Width > 0 && in.Height > 0 {
		opts.Width, opts.Height = in.Width, in.Height
	}
	name := in.Name
	if name == "" {
		name = "JSON Import"
	}
	b := newBuilder(name, opts)

	for i, jn := range in.Nodes {
		if jn.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %d has no id", i)
		}
		if _, dup := b.byID[jn.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", jn.ID)
		}
		n := b.node(jn.ID, jn.Label)
		n.Properties = jn.Data
		n.Fixed = jn.Fixed
		n.Radius = jn.Radius
		if jn.Type != "" {
			n.Type = jn.Type
		}
		if jn.Color != "" {
			n.Color = jn.Color
		}
		if jn.Size != nil {
			n.Size = *jn.Size
			b.sized[n] = true
		}
		if jn.Mass != nil {
			if *jn.Mass <= 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "node %q: mass must be positive, got %v", jn.ID, *jn.Mass)
			}
			n.Mass = *jn.Mass
			b.massed[n] = true
		}
		if jn.X != nil && jn.Y != nil {
			n.SetPosition(*jn.X, *jn.Y)
			b.placed[n] = true
		}
	}

	for _, je := range in.Edges {
		source, ok := b.byID[je.Source]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge references non-existent node: %s", je.Source)
		}
		target, ok := b.byID[je.Target]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge references non-existent node: %s", je.Target)
		}
		weight := 1.0
		if je.Weight != nil {
			weight = *je.Weight
		}
		if weight < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %s -> %s: weight must be non-negative", je.Source, je.Target)
		}
		e := b.edge(source, target, weight)
		if je.ID != "" {
			e.ID = je.ID
		}
		if je.Type != "" {
			e.Type = je.Type
		}
		if je.Color != "" {
			e.Color = je.Color
		}
		if je.Style != "" {
			e.Style = je.Style
		}
	}

	return b.finish(), nil
}
