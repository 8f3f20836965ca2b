package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewNode creates a new node with a unique ID, unit mass and timestamps
func NewNode(nodeType, label string, properties map[string]any) *Node {
	now := time.Now()
	return &Node{
		ID:         uuid.New().String(),
		Type:       nodeType,
		Label:      label,
		Properties: properties,
		Size:       1.0,
		Mass:       1.0,
		Color:      "#808080",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewEdge creates a new edge with a unique ID and timestamps. The node
// references are resolved when the edge is added to a graph.
func NewEdge(source, target, edgeType string, weight float64, properties map[string]any) *Edge {
	now := time.Now()
	return &Edge{
		ID:         uuid.New().String(),
		Source:     source,
		Target:     target,
		Type:       edgeType,
		Weight:     weight,
		Color:      "#000000",
		Style:      "solid",
		Properties: properties,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetPosition sets the position of a node
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.UpdatedAt = time.Now()
}

// SetAppearance sets the visual properties of a node
func (n *Node) SetAppearance(size float64, color string) {
	n.Size = size
	n.Color = color
	n.UpdatedAt = time.Now()
}

// NewGraph creates a new graph with a unique ID and timestamps
func NewGraph(name string) *Graph {
	now := time.Now()
	return &Graph{
		ID:        uuid.New().String(),
		Name:      name,
		Nodes:     []*Node{},
		Edges:     []*Edge{},
		Width:     800,
		Height:    600,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddNode adds a node to the graph
func (g *Graph) AddNode(node *Node) {
	g.Nodes = append(g.Nodes, node)
	g.UpdatedAt = time.Now()
}

// AddEdge resolves the edge's endpoints and adds it to the graph
func (g *Graph) AddEdge(edge *Edge) error {
	from, err := g.FindNodeByID(edge.Source)
	if err != nil {
		return fmt.Errorf("source node with ID %s does not exist in the graph", edge.Source)
	}
	to, err := g.FindNodeByID(edge.Target)
	if err != nil {
		return fmt.Errorf("target node with ID %s does not exist in the graph", edge.Target)
	}

	edge.From = from
	edge.To = to
	g.Edges = append(g.Edges, edge)
	g.UpdatedAt = time.Now()
	return nil
}

// Link resolves From/To on every edge from its Source/Target IDs. It is
// needed after decoding a graph from JSON, which only carries the IDs.
func (g *Graph) Link() error {
	byID := make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	for _, e := range g.Edges {
		from, ok := byID[e.Source]
		if !ok {
			return fmt.Errorf("edge %s references unknown source %q", e.ID, e.Source)
		}
		to, ok := byID[e.Target]
		if !ok {
			return fmt.Errorf("edge %s references unknown target %q", e.ID, e.Target)
		}
		e.From, e.To = from, to
	}
	return nil
}

// RemoveNode removes a node and all connected edges from the graph
func (g *Graph) RemoveNode(nodeID string) {
	nodes := g.Nodes[:0]
	for _, node := range g.Nodes {
		if node.ID != nodeID {
			nodes = append(nodes, node)
		}
	}
	g.Nodes = nodes

	edges := g.Edges[:0]
	for _, edge := range g.Edges {
		if edge.Source != nodeID && edge.Target != nodeID {
			edges = append(edges, edge)
		}
	}
	g.Edges = edges

	g.UpdatedAt = time.Now()
}

// SetDimensions sets the width and height of the graph
func (g *Graph) SetDimensions(width, height float64) {
	g.Width = width
	g.Height = height
	g.UpdatedAt = time.Now()
}
