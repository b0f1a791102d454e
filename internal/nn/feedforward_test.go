package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFeedForward_Forward(t *testing.T) {
	l := NewFeedForward(2, 2, Sigmoid{}, testRand())

	// Params order is [weight, bias].
	l.Params()[0].Value().SetRow(0, []float64{0.5, -0.25})
	l.Params()[0].Value().SetRow(1, []float64{1.0, 0.75})
	l.Params()[1].Value().Set(0, 0, 0.1)
	l.Params()[1].Value().Set(1, 0, -0.2)

	l.SetInput([]float64{1.0, 2.0})
	l.Forward()

	sig := Sigmoid{}
	assert.InDelta(t, sig.Forward(0.5*1.0-0.25*2.0+0.1), l.Output().Values.At(0, 0), 1e-12)
	assert.InDelta(t, sig.Forward(1.0*1.0+0.75*2.0-0.2), l.Output().Values.At(1, 0), 1e-12)
}

func TestFeedForward_BackwardGradCheck(t *testing.T) {
	l := NewFeedForward(3, 2, Tanh{}, testRand())
	l.SetInput([]float64{0.3, -0.8, 0.5})

	gy := []float64{1.0, -0.5}
	loss := func() float64 {
		l.Forward()
		return dotLoss(gy, l.Output().Values)
	}

	loss()
	l.Output().ZeroGrad()
	l.Output().Grad.SetCol(0, gy)
	l.Backward(true)

	assertParamGrads(t, l.Params(), snapshot(l.Grads()), loss)

	for i := 0; i < 3; i++ {
		want := numGrad(l.Input().Values, i, 0, loss)
		assert.InDelta(t, want, l.Input().Grad.At(i, 0), 1e-4, "input gradient %d", i)
	}
}

func TestFeedForward_TrackedMatchesForward(t *testing.T) {
	rng := testRand()
	l := NewFeedForward(4, 3, Tanh{}, rng)
	l.Params()[1].Value().SetCol(0, []float64{0.2, -0.4, 0.6})
	l.SetInput([]float64{0.1, -0.9, 0.4, 0.7})

	l.Forward()
	plain := l.Output().Slice()

	require.NoError(t, l.ForwardTracked())
	tracked := l.Output().Slice()

	for i := range plain {
		assert.InDelta(t, plain[i], tracked[i], 1e-12)
	}
}

func TestFeedForward_RelevanceConservation(t *testing.T) {
	l := NewFeedForward(4, 2, Sigmoid{}, testRand())
	l.Params()[1].Value().SetCol(0, []float64{0.3, -0.1})
	l.SetInput([]float64{0.5, -0.2, 0.8, 0.1})

	require.NoError(t, l.ForwardTracked())

	l.Output().Relevance.SetCol(0, []float64{0.7, 0.3})
	require.NoError(t, l.PropagateRelevance())

	sum := 0.0
	for i := 0; i < 4; i++ {
		sum += l.Input().Relevance.At(i, 0)
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestFeedForward_RelevanceWithoutTracking(t *testing.T) {
	l := NewFeedForward(2, 2, Identity{}, testRand())
	l.SetInput([]float64{1, 2})
	l.Forward()

	err := l.PropagateRelevance()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFeedForward_TrackedRowsSumToPre(t *testing.T) {
	l := NewFeedForward(3, 2, Identity{}, testRand())
	l.Params()[1].Value().SetCol(0, []float64{0.5, -1.5})
	l.SetInput([]float64{0.4, -0.6, 1.2})

	require.NoError(t, l.ForwardTracked())

	// With an identity activation the output is the pre-activation, so
	// every contribution row must sum to its output element.
	w := l.Params()[0].Value()
	for j := 0; j < 2; j++ {
		pre := l.Params()[1].Value().At(j, 0)
		for k := 0; k < 3; k++ {
			pre += w.At(j, k) * l.Input().Values.At(k, 0)
		}
		assert.InDelta(t, pre, l.Output().Values.At(j, 0), 1e-12)
	}
}

func TestXavierBounds(t *testing.T) {
	p := NewParam("w", 10, 6, testRand())
	bound := math.Sqrt(6.0 / 16.0)
	r, c := p.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := p.Value().At(i, j)
			assert.LessOrEqual(t, math.Abs(v), bound)
		}
	}
}

func TestNewParam_NilRandZeros(t *testing.T) {
	p := NewParam("b", 3, 1, nil)
	assert.True(t, mat.Equal(p.Value(), mat.NewDense(3, 1, nil)))
	assert.Equal(t, "b", p.Name())
}
