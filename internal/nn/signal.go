package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Signal is a fixed-size column vector with parallel gradient and
// relevance buffers.
//
// A Signal is owned exclusively by the layer (or test) holding it; its
// values may be read across time steps by a following recurrent step, but
// only the owner writes them. The shape is fixed at construction and never
// changes.
type Signal struct {
	Values    *mat.Dense // n×1
	Grad      *mat.Dense // n×1, seeded by the caller on outputs
	Relevance *mat.Dense // n×1, used only by contribution tracking
}

// NewSignal creates a zero-valued signal of the given size.
func NewSignal(size int) *Signal {
	return &Signal{
		Values:    mat.NewDense(size, 1, nil),
		Grad:      mat.NewDense(size, 1, nil),
		Relevance: mat.NewDense(size, 1, nil),
	}
}

// NewSignalFrom creates a signal initialized with the given values.
func NewSignalFrom(values []float64) *Signal {
	s := NewSignal(len(values))
	s.Set(values)
	return s
}

// Size returns the vector length.
func (s *Signal) Size() int {
	n, _ := s.Values.Dims()
	return n
}

// Set overwrites the values. Panics if the length differs from the
// signal's fixed size.
func (s *Signal) Set(values []float64) {
	if len(values) != s.Size() {
		panic(fmt.Sprintf("nn: signal of size %d set with %d values", s.Size(), len(values)))
	}
	for i, v := range values {
		s.Values.Set(i, 0, v)
	}
}

// Slice returns a copy of the values as a plain slice.
func (s *Signal) Slice() []float64 {
	out := make([]float64, s.Size())
	for i := range out {
		out[i] = s.Values.At(i, 0)
	}
	return out
}

// AddGrad accumulates g into the gradient buffer.
func (s *Signal) AddGrad(g mat.Matrix) {
	s.Grad.Add(s.Grad, g)
}

// ZeroGrad clears the gradient buffer.
func (s *Signal) ZeroGrad() {
	s.Grad.Zero()
}

// ZeroRelevance clears the relevance buffer.
func (s *Signal) ZeroRelevance() {
	s.Relevance.Zero()
}
