// Package physics implements one step of the force-directed simulation over
// the flat State representation.
//
// Each step accumulates three forces per node: pairwise repulsion, spring
// attraction along edges and gravity toward the configured center. The net
// force is turned into a displacement scaled by the current temperature and
// by the inverse of the node's mass, then the temperature is cooled by
// Config.CoolDown. Large moves early and small moves late let the layout
// settle instead of oscillating.
//
// The package has no I/O and no goroutines; it produces the same result
// whether it is called inline or from a background worker.
package physics

import (
	"math"
)

// minDistanceRatio bounds the repulsion distance from below, relative to the
// ideal distance, so near-coincident nodes cannot produce infinite forces.
const minDistanceRatio = 0.01

// Step runs one simulation iteration on s and returns the cooled temperature.
func Step(s *State, cfg Config, temperature float64) float64 {
	n := s.NodeCount()
	if n == 0 {
		return temperature * cfg.CoolDown
	}

	st := newStepper(s, cfg)
	st.repulsion()
	st.attraction()
	st.gravity()
	st.integrate(temperature)

	return temperature * cfg.CoolDown
}

// Run performs steps iterations starting at temperature and returns the
// final temperature.
func Run(s *State, cfg Config, steps int, temperature float64) float64 {
	for i := 0; i < steps; i++ {
		temperature = Step(s, cfg, temperature)
	}
	return temperature
}

// stepper holds the per-step derived values.
type stepper struct {
	s      *State
	cfg    Config
	n      int
	k      float64 // ideal distance
	k3     float64 // k^3, the repulsion numerator
	minD   float64
	forces []float64
	jitter *jitter
}

func newStepper(s *State, cfg Config) *stepper {
	n := s.NodeCount()
	if cap(s.forces) < 2*n {
		s.forces = make([]float64, 2*n)
	}
	forces := s.forces[:2*n]
	for i := range forces {
		forces[i] = 0
	}

	k := cfg.idealDistance(n)
	return &stepper{
		s:      s,
		cfg:    cfg,
		n:      n,
		k:      k,
		k3:     k * k * k,
		minD:   k * minDistanceRatio,
		forces: forces,
		jitter: newJitter(cfg.Seed),
	}
}

func (st *stepper) useBarnesHut() bool {
	return st.cfg.UseBarnesHut && st.n > st.cfg.BarnesHutThreshold
}

// repulsion applies the pairwise repulsive forces, exactly or through the
// Barnes-Hut quadtree.
func (st *stepper) repulsion() {
	if st.cfg.Scaling == 0 {
		return
	}
	if st.useBarnesHut() {
		st.repulsionBarnesHut()
		return
	}

	p := st.s.Positions
	for i := 0; i < st.n; i++ {
		for j := i + 1; j < st.n; j++ {
			dx := p[2*i] - p[2*j]
			dy := p[2*i+1] - p[2*j+1]
			fx, fy := st.repel(i, j, dx, dy, st.s.mass(i)*st.s.mass(j), true)
			st.forces[2*i] += fx
			st.forces[2*i+1] += fy
			st.forces[2*j] -= fx
			st.forces[2*j+1] -= fy
		}
	}
}

// repel returns the force on i caused by j, where (dx, dy) points from j to
// i. The magnitude is Scaling * k^3 * mm / d^2. With withRadius set and
// PreventOverlap enabled, d is the gap between the two discs.
func (st *stepper) repel(i, j int, dx, dy, mm float64, withRadius bool) (float64, float64) {
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		dx, dy = st.jitter.direction(i, j)
		d2 = 1
	}
	d := math.Sqrt(d2)

	dist := d
	if withRadius && st.cfg.PreventOverlap {
		dist = d - st.s.radius(i) - st.s.radius(j)
	}
	if dist < st.minD {
		dist = st.minD
	}

	f := st.cfg.Scaling * st.k3 * mm / (dist * dist)
	return dx / d * f, dy / d * f
}

// attraction pulls the endpoints of every edge together with a zero-length
// spring: the force grows linearly with weight and separation.
func (st *stepper) attraction() {
	p := st.s.Positions
	for e, w := range st.s.Weights {
		a, b := int(st.s.Edges[2*e]), int(st.s.Edges[2*e+1])
		if a == b {
			continue
		}
		dx := p[2*b] - p[2*a]
		dy := p[2*b+1] - p[2*a+1]
		// magnitude w*d along the unit vector is simply w*(dx, dy)
		st.forces[2*a] += w * dx
		st.forces[2*a+1] += w * dy
		st.forces[2*b] -= w * dx
		st.forces[2*b+1] -= w * dy
	}
}

// gravity pulls every node toward the center, proportionally to its mass.
func (st *stepper) gravity() {
	g := st.cfg.Gravity
	if g == 0 {
		return
	}
	p := st.s.Positions
	cx, cy := st.cfg.Center[0], st.cfg.Center[1]
	for i := 0; i < st.n; i++ {
		dx := cx - p[2*i]
		dy := cy - p[2*i+1]
		m := st.s.mass(i)
		if st.cfg.StrongGravity {
			st.forces[2*i] += g * m * dx
			st.forces[2*i+1] += g * m * dy
			continue
		}
		d := math.Sqrt(dx*dx + dy*dy)
		if d == 0 {
			continue
		}
		f := g * m * st.k / d
		st.forces[2*i] += dx * f
		st.forces[2*i+1] += dy * f
	}
}

// integrate converts forces to displacements: temperature/mass per unit of
// force, optionally clamped to MaxDisplacement.
func (st *stepper) integrate(temperature float64) {
	p := st.s.Positions
	maxD := st.cfg.MaxDisplacement
	for i := 0; i < st.n; i++ {
		if st.s.fixed(i) {
			continue
		}
		scale := temperature / st.s.mass(i)
		dx := st.forces[2*i] * scale
		dy := st.forces[2*i+1] * scale
		if maxD > 0 {
			if l := math.Sqrt(dx*dx + dy*dy); l > maxD {
				dx *= maxD / l
				dy *= maxD / l
			}
		}
		p[2*i] += dx
		p[2*i+1] += dy
	}
}
