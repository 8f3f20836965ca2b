package render

import (
	"encoding/json"

	"github.com/TFMV/forcegraph/models"
)

// JSONRenderer outputs the positioned graph as JSON
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders graph as JSON data for machine consumption or custom visualizations"
}

func (r *JSONRenderer) Extension() string { return "json" }

// The document shape matches what the JSON ingest processor reads, so a
// rendered layout can be loaded again and refined.
type jsonNode struct {
	ID     string         `json:"id"`
	Label  string         `json:"label,omitempty"`
	Type   string         `json:"type,omitempty"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Size   float64        `json:"size,omitempty"`
	Mass   float64        `json:"mass,omitempty"`
	Radius float64        `json:"radius,omitempty"`
	Fixed  bool           `json:"fixed,omitempty"`
	Color  string         `json:"color,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

type jsonEdge struct {
	ID     string  `json:"id,omitempty"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Type   string  `json:"type,omitempty"`
	Color  string  `json:"color,omitempty"`
	Style  string  `json:"style,omitempty"`
}

type jsonGraph struct {
	Name   string     `json:"name,omitempty"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Nodes  []jsonNode `json:"nodes"`
	Edges  []jsonEdge `json:"edges"`
}

// Render creates a JSON representation of the graph
func (r *JSONRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	doc := jsonGraph{
		Name:   graph.Name,
		Width:  graph.Width,
		Height: graph.Height,
		Nodes:  make([]jsonNode, 0, len(graph.Nodes)),
		Edges:  make([]jsonEdge, 0, len(graph.Edges)),
	}

	for _, node := range graph.Nodes {
		doc.Nodes = append(doc.Nodes, jsonNode{
			ID:     node.ID,
			Label:  node.Label,
			Type:   node.Type,
			X:      node.X,
			Y:      node.Y,
			Size:   node.Size,
			Mass:   node.Mass,
			Radius: node.Radius,
			Fixed:  node.Fixed,
			Color:  node.Color,
			Data:   node.Properties,
		})
	}
	for _, edge := range graph.Edges {
		doc.Edges = append(doc.Edges, jsonEdge{
			ID:     edge.ID,
			Source: edge.Source,
			Target: edge.Target,
			Weight: edge.Weight,
			Type:   edge.Type,
			Color:  edge.Color,
			Style:  edge.Style,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}
