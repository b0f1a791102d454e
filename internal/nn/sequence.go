package nn

import "gonum.org/v1/gonum/mat"

// RecurrentStep is the contract of a layer family that carries state
// across time steps. T is the concrete step type (*RAN, *TPR), so a step
// receives the previous step of its own family; a nil previous step means
// sequence start and all recurrent terms are omitted.
type RecurrentStep[T any] interface {
	ForwardStep(prev T)
	BackwardStep(prev T, propagateToInput bool)
}

// Recurrent is the full contract the sequence and bidirectional wrappers
// need from a step type.
type Recurrent[T any] interface {
	RecurrentStep[T]
	Layer
	SetInput(x []float64)
}

// Sequence is the context window of a recurrent layer: an indexed array of
// per-step layer instances sharing one parameter set. Previous and next
// state are bounds-checked index lookups, so there are no pointer cycles
// to invalidate; starting a new sequence truncates the array.
//
// Forward runs in step order; Backward runs in reverse order, each step
// adding its recurrent error contributions into the previous step's
// buffers.
//
// Example:
//
//	params := nn.NewRANParams(3, 2, rng)
//	seq := nn.NewSequence(func() *nn.RAN {
//	    return nn.NewRANShared(3, 2, nn.Tanh{}, params)
//	})
//	for _, x := range inputs {
//	    seq.Forward(x)
//	}
//	// seed output gradients, then:
//	seq.Backward(true)
type Sequence[T Recurrent[T]] struct {
	newStep func() T
	steps   []T
}

// NewSequence creates an empty sequence. newStep must build a fresh step
// instance over the shared parameter set.
func NewSequence[T Recurrent[T]](newStep func() T) *Sequence[T] {
	return &Sequence[T]{newStep: newStep}
}

// Len returns the number of processed steps.
func (s *Sequence[T]) Len() int { return len(s.steps) }

// At returns the step at index i.
func (s *Sequence[T]) At(i int) T { return s.steps[i] }

// Prev returns the step before index i, or false at the sequence start.
func (s *Sequence[T]) Prev(i int) (T, bool) {
	var zero T
	if i <= 0 || i >= len(s.steps) {
		return zero, false
	}
	return s.steps[i-1], true
}

// Next returns the step after index i, or false at the sequence end.
func (s *Sequence[T]) Next(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(s.steps)-1 {
		return zero, false
	}
	return s.steps[i+1], true
}

// Reset truncates the sequence so a new one can be processed. Parameter
// values are untouched.
func (s *Sequence[T]) Reset() { s.steps = s.steps[:0] }

// Forward appends a new step, sets its input and runs its forward pass
// with the previous step as context. Returns the new step.
func (s *Sequence[T]) Forward(x []float64) T {
	step := s.newStep()
	step.SetInput(x)
	var prev T
	if len(s.steps) > 0 {
		prev = s.steps[len(s.steps)-1]
	}
	step.ForwardStep(prev)
	s.steps = append(s.steps, step)
	return step
}

// Backward runs the backward passes in reverse step order. The caller
// seeds each step's output gradient beforehand; recurrent contributions
// flow into earlier steps as part of the pass.
func (s *Sequence[T]) Backward(propagateToInput bool) {
	for i := len(s.steps) - 1; i >= 0; i-- {
		prev, _ := s.Prev(i)
		s.steps[i].BackwardStep(prev, propagateToInput)
	}
}

// Outputs returns the per-step output values in step order.
func (s *Sequence[T]) Outputs() []*mat.Dense {
	out := make([]*mat.Dense, len(s.steps))
	for i, step := range s.steps {
		out[i] = step.Output().Values
	}
	return out
}
