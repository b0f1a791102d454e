package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Product merges any number of equally sized inputs into their
// element-wise product. The layer has no parameters.
//
// Backward, for each input i: gxi = gy ⊙ ∏_{j≠i} xj. The leave-one-out
// products are built from prefix and suffix partial products, so the pass
// is linear in the number of inputs and never divides by an input value.
type Product struct {
	size   int
	inputs []*Signal
	output *Signal

	prefix []*mat.Dense
	suffix []*mat.Dense
}

// NewProduct creates a product merge layer over numInputs inputs of the
// given size. At least two inputs are required.
func NewProduct(size, numInputs int) (*Product, error) {
	if numInputs < 2 {
		return nil, fmt.Errorf("product: %w: %d inputs (want at least 2)", ErrInvalidConfig, numInputs)
	}
	l := &Product{
		size:   size,
		output: NewSignal(size),
	}
	for i := 0; i < numInputs; i++ {
		l.inputs = append(l.inputs, NewSignal(size))
		l.prefix = append(l.prefix, mat.NewDense(size, 1, nil))
		l.suffix = append(l.suffix, mat.NewDense(size, 1, nil))
	}
	return l, nil
}

// Kind returns KindProduct.
func (l *Product) Kind() Kind { return KindProduct }

// Inputs returns the input signals.
func (l *Product) Inputs() []*Signal { return l.inputs }

// Output returns the output signal.
func (l *Product) Output() *Signal { return l.output }

// Params returns nil; the product layer is parameter-free.
func (l *Product) Params() []*Param { return nil }

// Grads returns nil; the product layer is parameter-free.
func (l *Product) Grads() []*mat.Dense { return nil }

// Forward computes the element-wise product of all inputs.
func (l *Product) Forward() {
	l.output.Values.Copy(l.inputs[0].Values)
	for _, in := range l.inputs[1:] {
		l.output.Values.MulElem(l.output.Values, in.Values)
	}
}

// Backward propagates error to the inputs. With no parameters to update,
// the pass is a no-op unless propagation is requested.
func (l *Product) Backward(propagateToInput bool) {
	if !propagateToInput {
		return
	}
	n := len(l.inputs)

	// prefix[i] = x0 ⊙ … ⊙ x(i-1), suffix[i] = x(i+1) ⊙ … ⊙ x(n-1).
	ones(l.prefix[0])
	for i := 1; i < n; i++ {
		l.prefix[i].MulElem(l.prefix[i-1], l.inputs[i-1].Values)
	}
	ones(l.suffix[n-1])
	for i := n - 2; i >= 0; i-- {
		l.suffix[i].MulElem(l.suffix[i+1], l.inputs[i+1].Values)
	}

	var g mat.Dense
	for i, in := range l.inputs {
		g.Reset()
		g.MulElem(l.prefix[i], l.suffix[i])
		g.MulElem(&g, l.output.Grad)
		in.AddGrad(&g)
	}
}

func ones(m *mat.Dense) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, 1)
		}
	}
}
