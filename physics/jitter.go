package physics

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// jitter picks a separation direction for nodes sitting on the same point.
// The direction comes from seeded simplex noise, so the same seed and the
// same pair always separate the same way and backends stay comparable.
type jitter struct {
	seed  int64
	noise opensimplex.Noise
}

func newJitter(seed int64) *jitter {
	return &jitter{seed: seed}
}

// direction returns a unit vector for the pair (i, j). It is antisymmetric:
// direction(j, i) is the negation of direction(i, j).
func (j *jitter) direction(a, b int) (float64, float64) {
	if a > b {
		x, y := j.direction(b, a)
		return -x, -y
	}
	if j.noise == nil {
		j.noise = opensimplex.New(j.seed)
	}
	angle := j.noise.Eval2(float64(a)*0.731+0.5, float64(b)*0.419+0.5) * math.Pi
	return math.Cos(angle), math.Sin(angle)
}
