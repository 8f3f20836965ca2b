package physics

// State is the flat numeric form of a graph. Node i occupies Positions[2i]
// and Positions[2i+1]; edge e joins Edges[2e] and Edges[2e+1] with
// Weights[e].
type State struct {
	Positions []float64
	Mass      []float64
	Radius    []float64
	Fixed     []bool
	Edges     []int32
	Weights   []float64

	forces []float64 // scratch, not part of the snapshot
}

// NewState allocates a state for n nodes and m edges. Masses default to 1.
func NewState(n, m int) *State {
	s := &State{
		Positions: make([]float64, 2*n),
		Mass:      make([]float64, n),
		Radius:    make([]float64, n),
		Fixed:     make([]bool, n),
		Edges:     make([]int32, 2*m),
		Weights:   make([]float64, m),
	}
	for i := range s.Mass {
		s.Mass[i] = 1
	}
	return s
}

// NodeCount returns the number of nodes.
func (s *State) NodeCount() int { return len(s.Mass) }

// EdgeCount returns the number of edges.
func (s *State) EdgeCount() int { return len(s.Weights) }

// Clone returns a deep copy sharing no memory with s.
func (s *State) Clone() *State {
	return &State{
		Positions: append([]float64(nil), s.Positions...),
		Mass:      append([]float64(nil), s.Mass...),
		Radius:    append([]float64(nil), s.Radius...),
		Fixed:     append([]bool(nil), s.Fixed...),
		Edges:     append([]int32(nil), s.Edges...),
		Weights:   append([]float64(nil), s.Weights...),
	}
}

// SetPositions overwrites the positions from an interleaved x/y slice.
// Extra or missing entries are ignored.
func (s *State) SetPositions(p []float64) {
	copy(s.Positions, p)
}

func (s *State) mass(i int) float64 {
	if m := s.Mass[i]; m > 0 {
		return m
	}
	return 1
}

func (s *State) radius(i int) float64 {
	if i < len(s.Radius) {
		return s.Radius[i]
	}
	return 0
}

func (s *State) fixed(i int) bool {
	return i < len(s.Fixed) && s.Fixed[i]
}
