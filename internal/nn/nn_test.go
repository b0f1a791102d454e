package nn

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// testRand returns a deterministic generator for reproducible tests.
func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 7))
}

// dotLoss computes Σ gy_j · y_j, the scalar loss used by the
// finite-difference gradient checks.
func dotLoss(gy []float64, out *mat.Dense) float64 {
	sum := 0.0
	for i, g := range gy {
		sum += g * out.At(i, 0)
	}
	return sum
}

// numGrad perturbs m[i,j] and returns the centered finite difference of
// loss.
func numGrad(m *mat.Dense, i, j int, loss func() float64) float64 {
	const eps = 1e-6
	orig := m.At(i, j)
	m.Set(i, j, orig+eps)
	lp := loss()
	m.Set(i, j, orig-eps)
	lm := loss()
	m.Set(i, j, orig)
	return (lp - lm) / (2 * eps)
}

// snapshot deep-copies gradient buffers so a later pass cannot overwrite
// the values under test.
func snapshot(grads []*mat.Dense) []*mat.Dense {
	out := make([]*mat.Dense, len(grads))
	for i, g := range grads {
		out[i] = mat.DenseCopyOf(g)
	}
	return out
}

// assertParamGrads compares analytic parameter gradients against finite
// differences of loss for every parameter element.
func assertParamGrads(t *testing.T, params []*Param, analytic []*mat.Dense, loss func() float64) {
	t.Helper()
	for pi, p := range params {
		rows, cols := p.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				want := numGrad(p.Value(), i, j, loss)
				assert.InDelta(t, want, analytic[pi].At(i, j), 1e-4,
					"gradient mismatch for %s[%d,%d]", p.Name(), i, j)
			}
		}
	}
}

func TestKind_Recurrent(t *testing.T) {
	assert.True(t, KindRAN.Recurrent())
	assert.True(t, KindTPR.Recurrent())
	assert.False(t, KindFeedForward.Recurrent())
	assert.False(t, KindBiaffine.Recurrent())
	assert.False(t, KindProduct.Recurrent())
	assert.False(t, KindLayerNorm.Recurrent())
}

func TestSignal_SetAndSlice(t *testing.T) {
	s := NewSignalFrom([]float64{1, -2, 3})
	assert.Equal(t, 3, s.Size())
	assert.Equal(t, []float64{1, -2, 3}, s.Slice())

	s.AddGrad(mat.NewDense(3, 1, []float64{0.5, 0.5, 0.5}))
	s.AddGrad(mat.NewDense(3, 1, []float64{0.5, 0.5, 0.5}))
	assert.InDelta(t, 1.0, s.Grad.At(0, 0), 1e-12)

	s.ZeroGrad()
	assert.Equal(t, 0.0, s.Grad.At(0, 0))

	assert.Panics(t, func() { s.Set([]float64{1, 2}) })
}
