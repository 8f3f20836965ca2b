package models

import (
	"fmt"
	"math"
)

// FindNodeByID returns a node by its ID
func (g *Graph) FindNodeByID(id string) (*Node, error) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, nil
		}
	}
	return nil, fmt.Errorf("node with ID %s not found", id)
}

// Degrees returns the number of edges touching each node, keyed by node ID.
// Self loops count once.
func (g *Graph) Degrees() map[string]int {
	deg := make(map[string]int, len(g.Nodes))
	for _, edge := range g.Edges {
		deg[edge.Source]++
		if edge.Target != edge.Source {
			deg[edge.Target]++
		}
	}
	return deg
}

// Bounds returns the bounding box of the node positions, expanded by each
// node's Size. An empty graph yields a zero box.
func (g *Graph) Bounds() (minX, minY, maxX, maxY float64) {
	if len(g.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes {
		minX = math.Min(minX, n.X-n.Size)
		minY = math.Min(minY, n.Y-n.Size)
		maxX = math.Max(maxX, n.X+n.Size)
		maxY = math.Max(maxY, n.Y+n.Size)
	}
	return minX, minY, maxX, maxY
}
