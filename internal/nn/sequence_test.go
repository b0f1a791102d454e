package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRANSequence(t *testing.T) *Sequence[*RAN] {
	t.Helper()
	params := NewRANParams(2, 2, testRand())
	return NewSequence(func() *RAN {
		return NewRANShared(2, 2, Tanh{}, params)
	})
}

func TestSequence_IndexedAccess(t *testing.T) {
	seq := newTestRANSequence(t)
	seq.Forward([]float64{0.1, 0.2})
	seq.Forward([]float64{0.3, 0.4})
	seq.Forward([]float64{0.5, 0.6})

	require.Equal(t, 3, seq.Len())

	_, ok := seq.Prev(0)
	assert.False(t, ok, "sequence start has no previous step")
	prev, ok := seq.Prev(2)
	require.True(t, ok)
	assert.Same(t, seq.At(1), prev)
	_, ok = seq.Prev(3)
	assert.False(t, ok)

	next, ok := seq.Next(0)
	require.True(t, ok)
	assert.Same(t, seq.At(1), next)
	_, ok = seq.Next(2)
	assert.False(t, ok, "sequence end has no next step")

	assert.Len(t, seq.Outputs(), 3)
}

func TestSequence_ResetStartsOver(t *testing.T) {
	seq := newTestRANSequence(t)
	first := seq.Forward([]float64{0.4, -0.6})
	firstOut := first.Output().Slice()

	seq.Forward([]float64{0.7, 0.2})
	seq.Reset()
	require.Equal(t, 0, seq.Len())

	// After a reset the same input is a sequence start again and must see
	// no recurrent state from the previous run.
	again := seq.Forward([]float64{0.4, -0.6})
	assert.Equal(t, firstOut, again.Output().Slice())
}

func TestSequence_StepsSeeRecurrentState(t *testing.T) {
	seq := newTestRANSequence(t)
	a := seq.Forward([]float64{0.4, -0.6})
	b := seq.Forward([]float64{0.4, -0.6})

	// Same input, but the second step carries the first step's state.
	assert.NotEqual(t, a.Output().Slice(), b.Output().Slice())
}

// fakeStep satisfies the recurrent step contract with a non-recurrent
// layer kind, to exercise the wrapper's eager validation.
type fakeStep struct {
	*FeedForward
}

func (f *fakeStep) ForwardStep(*fakeStep)               { f.Forward() }
func (f *fakeStep) BackwardStep(_ *fakeStep, prop bool) { f.Backward(prop) }

func TestBidirectional_RejectsNonRecurrentKind(t *testing.T) {
	newStep := func() *fakeStep {
		return &fakeStep{FeedForward: NewFeedForward(2, 2, Tanh{}, testRand())}
	}
	_, err := NewBidirectional(newStep, newStep)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBidirectional_ConcatenatesDirections(t *testing.T) {
	fwdParams := NewRANParams(2, 2, testRand())
	bwdParams := NewRANParams(2, 2, testRand())
	bi, err := NewBidirectional(
		func() *RAN { return NewRANShared(2, 2, Tanh{}, fwdParams) },
		func() *RAN { return NewRANShared(2, 2, Tanh{}, bwdParams) },
	)
	require.NoError(t, err)

	inputs := [][]float64{{0.1, 0.9}, {-0.5, 0.3}, {0.7, -0.2}}
	bi.Forward(inputs)
	require.Equal(t, 3, bi.Len())

	// Position i concatenates the forward output at i with the backward
	// output computed from the reversed sequence at the same position.
	for i := range inputs {
		out := bi.OutputAt(i)
		require.Len(t, out, 4)
		fwd := bi.Forwards().At(i).Output().Slice()
		bwd := bi.Backwards().At(len(inputs) - 1 - i).Output().Slice()
		assert.Equal(t, fwd, out[:2])
		assert.Equal(t, bwd, out[2:])
	}
}

func TestBidirectional_SeedGradSplits(t *testing.T) {
	fwdParams := NewRANParams(2, 2, testRand())
	bwdParams := NewRANParams(2, 2, testRand())
	bi, err := NewBidirectional(
		func() *RAN { return NewRANShared(2, 2, Tanh{}, fwdParams) },
		func() *RAN { return NewRANShared(2, 2, Tanh{}, bwdParams) },
	)
	require.NoError(t, err)

	bi.Forward([][]float64{{0.1, 0.2}, {0.3, 0.4}})
	bi.SeedGrad(0, []float64{1, 2, 3, 4})

	fwdOut := bi.Forwards().At(0).Output()
	bwdOut := bi.Backwards().At(1).Output()
	assert.Equal(t, 1.0, fwdOut.Grad.At(0, 0))
	assert.Equal(t, 2.0, fwdOut.Grad.At(1, 0))
	assert.Equal(t, 3.0, bwdOut.Grad.At(0, 0))
	assert.Equal(t, 4.0, bwdOut.Grad.At(1, 0))

	bi.Backward(true)
}

func TestBidirectional_ResetBothDirections(t *testing.T) {
	params := NewRANParams(2, 2, testRand())
	bi, err := NewBidirectional(
		func() *RAN { return NewRANShared(2, 2, Tanh{}, params) },
		func() *RAN { return NewRANShared(2, 2, Tanh{}, params) },
	)
	require.NoError(t, err)

	bi.Forward([][]float64{{1, 2}})
	bi.Reset()
	assert.Equal(t, 0, bi.Len())
	assert.Equal(t, 0, bi.Backwards().Len())
}
