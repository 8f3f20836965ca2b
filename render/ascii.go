package render

import (
	"strings"

	"github.com/TFMV/forcegraph/models"
)

// ASCIIRenderer outputs a character grid
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders graphs as ASCII art for terminal or text-based output"
}

func (r *ASCIIRenderer) Extension() string { return "txt" }

var nodeSymbols = []rune{'O', '@', '#', 'X', '*', '+'}

const edgeRune = '·'

// Render creates an ASCII representation of the graph
func (r *ASCIIRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	width := max(options.Columns, 10)
	height := max(options.Rows, 5)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for i := 0; i < width; i++ {
		grid[0][i] = '-'
		grid[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		grid[i][0] = '|'
		grid[i][width-1] = '|'
	}
	grid[0][0], grid[0][width-1] = '+', '+'
	grid[height-1][0], grid[height-1][width-1] = '+', '+'

	// One cell per unit; the interior excludes the border.
	view := newViewport(graph, float64(width-3), float64(height-3), 0)
	cell := func(n *models.Node) (int, int) {
		x, y := view.project(n.X, n.Y)
		return clamp(int(x+0.5)+1, 1, width-2), clamp(int(y+0.5)+1, 1, height-2)
	}

	index := nodeIndex(graph)
	for _, edge := range graph.Edges {
		from, to := endpoints(index, edge)
		if from == nil || to == nil {
			continue
		}
		x1, y1 := cell(from)
		x2, y2 := cell(to)
		drawLine(grid, x1, y1, x2, y2)
	}

	for i, node := range graph.Nodes {
		x, y := cell(node)
		grid[y][x] = nodeSymbols[i%len(nodeSymbols)]

		if options.ShowLabels && node.Label != "" && y+1 < height-1 {
			label := []rune(node.Label)
			for j := 0; j < len(label) && x+j < width-1; j++ {
				if grid[y+1][x+j] == ' ' || grid[y+1][x+j] == edgeRune {
					grid[y+1][x+j] = label[j]
				}
			}
		}
	}

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(string(row))
		result.WriteRune('\n')
	}
	return []byte(result.String()), nil
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func isNodeSymbol(r rune) bool {
	for _, s := range nodeSymbols {
		if r == s {
			return true
		}
	}
	return false
}

// drawLine draws a Bresenham line of edge runes, leaving nodes intact.
func drawLine(grid [][]rune, x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 >= x2 {
		sx = -1
	}
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if y1 >= 0 && y1 < len(grid) && x1 >= 0 && x1 < len(grid[y1]) && !isNodeSymbol(grid[y1][x1]) {
			grid[y1][x1] = edgeRune
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
