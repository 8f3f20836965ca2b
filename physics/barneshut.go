package physics

import "math"

// maxTreeDepth stops subdivision when nodes (nearly) coincide; bodies that
// reach this depth share a leaf.
const maxTreeDepth = 32

// quad is one cell of the Barnes-Hut quadtree. Cells are stored in an arena
// and refer to their children by index; 0 means no child since the root
// always lives at index 0.
type quad struct {
	x, y, size float64 // square bounds: min corner and side

	cx, cy, mass float64 // center of mass of everything below

	leaf     bool
	body     int   // body index for a leaf, -1 when empty
	extra    []int // further bodies sharing a leaf at maxTreeDepth
	children [4]int32
}

type quadTree struct {
	cells []quad
	s     *State
}

// buildQuadTree inserts every node of s into a square tree covering the
// padded bounding box of the positions.
func buildQuadTree(s *State) *quadTree {
	n := s.NodeCount()
	p := s.Positions

	minX, maxX := p[0], p[0]
	minY, maxY := p[1], p[1]
	for i := 1; i < n; i++ {
		minX = math.Min(minX, p[2*i])
		maxX = math.Max(maxX, p[2*i])
		minY = math.Min(minY, p[2*i+1])
		maxY = math.Max(maxY, p[2*i+1])
	}

	side := math.Max(maxX-minX, maxY-minY)
	if side == 0 {
		side = 1
	}
	pad := side * 0.1
	side += 2 * pad
	minX -= pad
	minY -= pad

	t := &quadTree{cells: make([]quad, 0, 4*n), s: s}
	t.cells = append(t.cells, quad{x: minX, y: minY, size: side, leaf: true, body: -1})
	for i := 0; i < n; i++ {
		t.insert(0, i, p[2*i], p[2*i+1], s.mass(i), 0)
	}
	return t
}

func (t *quadTree) insert(ci int32, i int, px, py, m float64, depth int) {
	c := &t.cells[ci]

	if c.leaf && c.body == -1 {
		c.body = i
		c.cx, c.cy, c.mass = px, py, m
		return
	}

	if c.leaf {
		if depth >= maxTreeDepth {
			c.addMass(px, py, m)
			c.extra = append(c.extra, i)
			return
		}
		old := c.body
		ox, oy, om := c.cx, c.cy, c.mass
		c.leaf = false
		c.body = -1
		t.split(ci)
		t.insert(t.quadrant(ci, ox, oy), old, ox, oy, om, depth+1)
		c = &t.cells[ci] // split may have grown the arena
	}

	c.addMass(px, py, m)
	t.insert(t.quadrant(ci, px, py), i, px, py, m, depth+1)
}

func (c *quad) addMass(px, py, m float64) {
	total := c.mass + m
	if total == 0 {
		return
	}
	c.cx = (c.cx*c.mass + px*m) / total
	c.cy = (c.cy*c.mass + py*m) / total
	c.mass = total
}

// split creates the four children of cell ci: nw, ne, sw, se.
func (t *quadTree) split(ci int32) {
	x, y, half := t.cells[ci].x, t.cells[ci].y, t.cells[ci].size/2
	corners := [4][2]float64{{x, y}, {x + half, y}, {x, y + half}, {x + half, y + half}}
	var children [4]int32
	for q, corner := range corners {
		children[q] = int32(len(t.cells))
		t.cells = append(t.cells, quad{x: corner[0], y: corner[1], size: half, leaf: true, body: -1})
	}
	t.cells[ci].children = children
}

func (t *quadTree) quadrant(ci int32, px, py float64) int32 {
	c := &t.cells[ci]
	half := c.size / 2
	q := 0
	if px >= c.x+half {
		q++
	}
	if py >= c.y+half {
		q += 2
	}
	return c.children[q]
}

func (c *quad) contains(px, py float64) bool {
	return px >= c.x && px <= c.x+c.size && py >= c.y && py <= c.y+c.size
}

// force returns the repulsion on body i from everything under cell ci.
// Cells that do not contain i and satisfy size/distance < theta are treated
// as a single body at their center of mass.
func (t *quadTree) force(st *stepper, ci int32, i int, px, py, mi, theta float64) (float64, float64) {
	c := &t.cells[ci]
	if c.mass == 0 {
		return 0, 0
	}

	if c.leaf {
		var fx, fy float64
		p := t.s.Positions
		for _, j := range c.bodies() {
			if j == i {
				continue
			}
			jx, jy := st.repel(i, j, px-p[2*j], py-p[2*j+1], mi*t.s.mass(j), true)
			fx += jx
			fy += jy
		}
		return fx, fy
	}

	dx := px - c.cx
	dy := py - c.cy
	d := math.Sqrt(dx*dx + dy*dy)
	if d > 0 && !c.contains(px, py) && c.size/d < theta {
		return st.repel(i, -1, dx, dy, mi*c.mass, false)
	}

	var fx, fy float64
	for _, child := range c.children {
		cfx, cfy := t.force(st, child, i, px, py, mi, theta)
		fx += cfx
		fy += cfy
	}
	return fx, fy
}

func (c *quad) bodies() []int {
	if c.body == -1 {
		return c.extra
	}
	return append([]int{c.body}, c.extra...)
}

func (st *stepper) repulsionBarnesHut() {
	t := buildQuadTree(st.s)
	p := st.s.Positions
	for i := 0; i < st.n; i++ {
		fx, fy := t.force(st, 0, i, p[2*i], p[2*i+1], st.s.mass(i), st.cfg.BarnesHutTheta)
		st.forces[2*i] += fx
		st.forces[2*i+1] += fy
	}
}
