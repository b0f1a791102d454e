package nn

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Param is a named, trainable parameter array.
//
// Parameter values are shared across all time steps of a sequence and are
// mutated only by the optimizer between training iterations, never during
// a forward or backward pass. Per-step gradients live on the layer
// instances, not here, so independent sequences can share one parameter
// set.
//
// Example:
//
//	w := nn.NewParam("weight", 4, 3, rng) // Xavier-initialized 4×3 matrix
//	b := nn.NewParam("bias", 4, 1, nil)   // zero-initialized bias
type Param struct {
	name  string
	value *mat.Dense
}

// NewParam creates a parameter of the given shape.
//
// When rng is non-nil the values are drawn from the Xavier/Glorot uniform
// distribution U(-b, b) with b = sqrt(6/(rows+cols)); otherwise the
// parameter starts at zero (the usual choice for biases). The generator is
// explicit so that runs are reproducible; there is no package-level
// random state.
func NewParam(name string, rows, cols int, rng *rand.Rand) *Param {
	value := mat.NewDense(rows, cols, nil)
	if rng != nil {
		xavierFill(value, rng)
	}
	return &Param{name: name, value: value}
}

// Name returns the parameter name (e.g. "inputGate.weight").
func (p *Param) Name() string {
	return p.name
}

// Value returns the parameter array.
func (p *Param) Value() *mat.Dense {
	return p.value
}

// Dims returns the parameter shape.
func (p *Param) Dims() (rows, cols int) {
	return p.value.Dims()
}
