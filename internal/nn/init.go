package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// xavierFill initializes m with Xavier/Glorot uniform values.
//
// Bound: sqrt(6 / (fan_in + fan_out)), with fan_in = cols and
// fan_out = rows. Keeps activation variance stable across layers.
func xavierFill(m *mat.Dense, rng *rand.Rand) {
	rows, cols := m.Dims()
	bound := math.Sqrt(6.0 / float64(rows+cols))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, (rng.Float64()*2.0-1.0)*bound)
		}
	}
}
