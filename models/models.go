// Package models provides the graph data structures laid out by forcegraph.
// A Graph is owned by its consumer; the layout controller borrows it for a
// session and writes computed positions back into its nodes.
package models

import (
	"time"
)

// Node represents a node in the graph
type Node struct {
	ID    string  `json:"id"`
	Type  string  `json:"type,omitempty"`
	Label string  `json:"label"`
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"` // drawn radius in render units

	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Layout fields. Mass scales repulsion, gravity and inertia; Radius is
	// used for overlap prevention; Fixed pins the node in place.
	Mass   float64 `json:"mass,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Fixed  bool    `json:"fixed,omitempty"`

	// Index is the node's slot in the flat simulation arrays. It is assigned
	// by the layout controller and stays fixed for one session.
	Index int `json:"-"`

	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Edge represents an edge between two nodes
type Edge struct {
	ID     string  `json:"id"`
	Source string  `json:"source"` // ID of the source node
	Target string  `json:"target"` // ID of the target node
	From   *Node   `json:"-"`      // Reference to source node
	To     *Node   `json:"-"`      // Reference to target node
	Type   string  `json:"type,omitempty"`
	Weight float64 `json:"weight"`
	Color  string  `json:"color,omitempty"`
	Style  string  `json:"style,omitempty"` // e.g., "solid", "dashed", "dotted"

	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Graph represents a collection of nodes and edges
type Graph struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Nodes      []*Node   `json:"nodes"`
	Edges      []*Edge   `json:"edges"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Background string    `json:"background,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
