package physics

import (
	"math"
	"testing"
)

// gridState places n nodes on a slightly sheared grid so no two coincide.
func gridState(n int) *State {
	s := NewState(n, 0)
	side := int(math.Ceil(math.Sqrt(float64(n))))
	for i := 0; i < n; i++ {
		row, col := i/side, i%side
		s.Positions[2*i] = float64(col)*10 + float64(row)*0.37
		s.Positions[2*i+1] = float64(row)*10 + float64(col)*0.21
		s.Mass[i] = 1 + float64(i%3)
	}
	return s
}

func repulsionForces(s *State, cfg Config) []float64 {
	st := newStepper(s, cfg)
	st.repulsion()
	return append([]float64(nil), st.forces...)
}

func TestBarnesHutApproximatesExact(t *testing.T) {
	s := gridState(400)

	exactCfg := bareConfig()
	exact := repulsionForces(s, exactCfg)

	bhCfg := bareConfig()
	bhCfg.UseBarnesHut = true
	bhCfg.BarnesHutTheta = 0.5
	bhCfg.BarnesHutThreshold = 10
	approx := repulsionForces(s, bhCfg)

	var errSum, refSum float64
	for i := 0; i < s.NodeCount(); i++ {
		ex, ey := exact[2*i], exact[2*i+1]
		ax, ay := approx[2*i], approx[2*i+1]
		errSum += math.Hypot(ax-ex, ay-ey)
		refSum += math.Hypot(ex, ey)
	}

	if rel := errSum / refSum; rel > 0.05 {
		t.Errorf("relative Barnes-Hut error = %v, want <= 0.05", rel)
	}
}

func TestBarnesHutBelowThresholdIsExact(t *testing.T) {
	s := gridState(50)

	exact := repulsionForces(s, bareConfig())

	cfg := bareConfig()
	cfg.UseBarnesHut = true
	cfg.BarnesHutTheta = 0.8
	cfg.BarnesHutThreshold = 50
	got := repulsionForces(s, cfg)

	for i := range exact {
		if exact[i] != got[i] {
			t.Fatalf("force[%d] = %v, want %v", i, got[i], exact[i])
		}
	}
}

func TestQuadTreeMass(t *testing.T) {
	s := gridState(37)
	tree := buildQuadTree(s)

	var total float64
	for i := range s.Mass {
		total += s.Mass[i]
	}
	if root := tree.cells[0]; math.Abs(root.mass-total) > 1e-9 {
		t.Errorf("root mass = %v, want %v", root.mass, total)
	}
}

func TestQuadTreeCoincidentBodies(t *testing.T) {
	s := NewState(4, 0)
	s.Positions = []float64{1, 1, 1, 1, 1, 1, 8, 8}

	tree := buildQuadTree(s)

	if root := tree.cells[0]; root.mass != 4 {
		t.Errorf("root mass = %v, want 4", root.mass)
	}

	cfg := bareConfig()
	cfg.UseBarnesHut = true
	cfg.BarnesHutTheta = 0.8
	cfg.MaxDisplacement = 1
	Step(s, cfg, 1)

	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if distance(s, i, j) == 0 {
				t.Errorf("coincident bodies %d and %d did not separate", i, j)
			}
		}
	}
}
