package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerNorm_NormalizesToZeroMeanUnitVariance(t *testing.T) {
	l := NewLayerNorm(4, 0)
	l.SetInput([]float64{2, 4, 6, 8})
	l.Forward()

	y := l.Output().Slice()
	mean, variance := 0.0, 0.0
	for _, v := range y {
		mean += v
	}
	mean /= 4
	for _, v := range y {
		variance += (v - mean) * (v - mean)
	}
	variance /= 4

	assert.InDelta(t, 0.0, mean, 1e-9)
	assert.InDelta(t, 1.0, variance, 1e-4)
}

func TestLayerNorm_AffineTransform(t *testing.T) {
	l := NewLayerNorm(2, 0)
	l.Params()[0].Value().SetCol(0, []float64{2, 3})
	l.Params()[1].Value().SetCol(0, []float64{1, -1})

	l.SetInput([]float64{-1, 1})
	l.Forward()

	// xhat is close to (-1, 1) up to epsilon.
	assert.InDelta(t, 2*-1+1, l.Output().Values.At(0, 0), 1e-4)
	assert.InDelta(t, 3*1-1, l.Output().Values.At(1, 0), 1e-4)
}

func TestLayerNorm_BackwardGradCheck(t *testing.T) {
	l := NewLayerNorm(4, 0)
	l.Params()[0].Value().SetCol(0, []float64{1.5, 0.5, -1, 2})
	l.Params()[1].Value().SetCol(0, []float64{0.1, -0.2, 0.3, 0})
	l.SetInput([]float64{0.5, -0.8, 1.2, 0.1})

	gy := []float64{1, -0.5, 0.25, 0.75}
	loss := func() float64 {
		l.Forward()
		return dotLoss(gy, l.Output().Values)
	}

	loss()
	l.Output().ZeroGrad()
	l.Output().Grad.SetCol(0, gy)
	l.Backward(true)

	assertParamGrads(t, l.Params(), snapshot(l.Grads()), loss)

	for i := 0; i < 4; i++ {
		want := numGrad(l.Input().Values, i, 0, loss)
		assert.InDelta(t, want, l.Input().Grad.At(i, 0), 1e-4, "input gradient %d", i)
	}
}
