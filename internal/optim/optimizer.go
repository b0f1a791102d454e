// Package optim provides optimization algorithms for training Strand
// models.
//
// Optimizers hold the only cross-example gradient state: layers produce
// per-step gradient buffers that are overwritten by every backward call,
// and the training driver hands them to Accumulate exactly once per
// example. Step averages the accumulated gradients, applies the update
// rule and clears the accumulation.
package optim

import (
	"gonum.org/v1/gonum/mat"

	"github.com/strand-ml/strand/internal/nn"
)

// Optimizer is the interface shared by all update methods.
type Optimizer interface {
	// Accumulate sums the given per-step gradients into the optimizer's
	// buffers. params and grads are index-aligned, as returned by a
	// layer's Params and Grads. Call once per example (or per time step
	// of a sequence).
	Accumulate(params []*nn.Param, grads []*mat.Dense)

	// Step applies the update rule using the averaged accumulated
	// gradients and clears the accumulation. A Step with nothing
	// accumulated is a no-op.
	Step()

	// ZeroGrad discards any accumulated gradients without updating.
	ZeroGrad()
}

// accumulator sums per-example gradients keyed by parameter identity.
type accumulator struct {
	sums  map[*nn.Param]*mat.Dense
	count int
}

func newAccumulator() accumulator {
	return accumulator{sums: make(map[*nn.Param]*mat.Dense)}
}

// Accumulate adds grads into the per-parameter sums. Append-only: nothing
// is averaged until the optimizer steps.
func (a *accumulator) Accumulate(params []*nn.Param, grads []*mat.Dense) {
	for i, p := range params {
		sum, ok := a.sums[p]
		if !ok {
			r, c := p.Dims()
			sum = mat.NewDense(r, c, nil)
			a.sums[p] = sum
		}
		sum.Add(sum, grads[i])
	}
	a.count++
}

// ZeroGrad discards the accumulated gradients.
func (a *accumulator) ZeroGrad() {
	for _, sum := range a.sums {
		sum.Zero()
	}
	a.count = 0
}

// averaged calls fn with each parameter's gradient averaged over the
// accumulated examples, then clears the accumulation.
func (a *accumulator) averaged(fn func(p *nn.Param, grad *mat.Dense)) {
	if a.count == 0 {
		return
	}
	scale := 1.0 / float64(a.count)
	for p, sum := range a.sums {
		sum.Scale(scale, sum)
		fn(p, sum)
	}
	a.ZeroGrad()
}
