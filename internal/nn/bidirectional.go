package nn

import (
	"fmt"
)

// Bidirectional processes a sequence with two independent recurrent
// sequences, one left-to-right and one right-to-left, and concatenates
// their per-step outputs (left half forward, right half backward).
//
// The wrapper only makes sense over a recurrent family; constructing it
// over a non-recurrent step type fails eagerly with ErrInvalidConfig.
type Bidirectional[T Recurrent[T]] struct {
	fwd *Sequence[T]
	bwd *Sequence[T]
}

// NewBidirectional creates a bidirectional wrapper. newForward and
// newBackward build step instances for the two directions; they must use
// separate parameter sets, since the directions are trained independently.
func NewBidirectional[T Recurrent[T]](newForward, newBackward func() T) (*Bidirectional[T], error) {
	probe := newForward()
	if !probe.Kind().Recurrent() {
		return nil, fmt.Errorf("bidirectional: %w: layer kind %q is not recurrent", ErrInvalidConfig, probe.Kind())
	}
	return &Bidirectional[T]{
		fwd: NewSequence(newForward),
		bwd: NewSequence(newBackward),
	}, nil
}

// Reset truncates both directions for a new sequence.
func (b *Bidirectional[T]) Reset() {
	b.fwd.Reset()
	b.bwd.Reset()
}

// Forward processes the whole sequence in both directions.
func (b *Bidirectional[T]) Forward(inputs [][]float64) {
	for _, x := range inputs {
		b.fwd.Forward(x)
	}
	for i := len(inputs) - 1; i >= 0; i-- {
		b.bwd.Forward(inputs[i])
	}
}

// Len returns the number of processed steps.
func (b *Bidirectional[T]) Len() int { return b.fwd.Len() }

// OutputAt returns the concatenated output for step i: the left-to-right
// output followed by the right-to-left output of the same position.
func (b *Bidirectional[T]) OutputAt(i int) []float64 {
	n := b.fwd.Len()
	out := b.fwd.At(i).Output().Slice()
	return append(out, b.bwd.At(n-1-i).Output().Slice()...)
}

// SeedGrad seeds the output gradient for step i, splitting the
// concatenated gradient back onto the two directions.
func (b *Bidirectional[T]) SeedGrad(i int, grad []float64) {
	n := b.fwd.Len()
	half := len(grad) / 2
	fwdOut := b.fwd.At(i).Output()
	bwdOut := b.bwd.At(n - 1 - i).Output()
	for j := 0; j < half; j++ {
		fwdOut.Grad.Set(j, 0, fwdOut.Grad.At(j, 0)+grad[j])
		bwdOut.Grad.Set(j, 0, bwdOut.Grad.At(j, 0)+grad[half+j])
	}
}

// Backward runs BPTT over both directions.
func (b *Bidirectional[T]) Backward(propagateToInput bool) {
	b.fwd.Backward(propagateToInput)
	b.bwd.Backward(propagateToInput)
}

// Forwards returns the left-to-right sequence.
func (b *Bidirectional[T]) Forwards() *Sequence[T] { return b.fwd }

// Backwards returns the right-to-left sequence.
func (b *Bidirectional[T]) Backwards() *Sequence[T] { return b.bwd }
