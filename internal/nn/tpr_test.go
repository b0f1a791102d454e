package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFlattenRowMajor_RoundTrip(t *testing.T) {
	b := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	col := mat.NewDense(6, 1, nil)
	flattenRowMajor(b, col)

	// Rows outer, columns inner.
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, mat.Col(nil, 0, col))

	back := mat.NewDense(2, 3, nil)
	unflattenRowMajor(col, back)
	assert.True(t, mat.Equal(b, back))
}

func TestTPR_SequenceStartMatchesFormula(t *testing.T) {
	const (
		inSize = 2
		nR     = 2
		nS     = 3
		dR     = 2
		dS     = 2
	)
	l := NewTPR(inSize, nR, nS, dR, dS, Sigmoid{}, testRand())
	x := []float64{0.5, -0.4}
	l.SetInput(x)
	l.Forward()

	p := l.SharedParams()
	sig := Sigmoid{}
	aR := make([]float64, nR)
	for j := 0; j < nR; j++ {
		pre := p.RoleUnit.B.Value().At(j, 0)
		for k := 0; k < inSize; k++ {
			pre += p.RoleUnit.W.Value().At(j, k) * x[k]
		}
		aR[j] = sig.Forward(pre)
	}
	aS := make([]float64, nS)
	for j := 0; j < nS; j++ {
		pre := p.SymbolUnit.B.Value().At(j, 0)
		for k := 0; k < inSize; k++ {
			pre += p.SymbolUnit.W.Value().At(j, k) * x[k]
		}
		aS[j] = sig.Forward(pre)
	}
	r := make([]float64, dR)
	for i := 0; i < dR; i++ {
		for j := 0; j < nR; j++ {
			r[i] += p.R.Value().At(i, j) * aR[j]
		}
	}
	s := make([]float64, dS)
	for i := 0; i < dS; i++ {
		for j := 0; j < nS; j++ {
			s[i] += p.S.Value().At(i, j) * aS[j]
		}
	}

	// y = vec(s ⊗ rᵗ), row-major.
	for i := 0; i < dS; i++ {
		for j := 0; j < dR; j++ {
			assert.InDelta(t, s[i]*r[j], l.Output().Values.At(i*dR+j, 0), 1e-12)
		}
	}
}

func TestTPR_SequenceGradCheck(t *testing.T) {
	params := NewTPRParams(2, 2, 2, 2, 2, testRand())
	newStep := func() *TPR { return NewTPRShared(2, 2, 2, 2, 2, Sigmoid{}, params) }

	inputs := [][]float64{{0.6, -0.2}, {-0.4, 0.8}}
	gys := [][]float64{{1, -0.5, 0.25, 0.75}, {-0.3, 0.9, -1, 0.5}}

	loss := func() float64 {
		seq := NewSequence(newStep)
		total := 0.0
		for i, x := range inputs {
			step := seq.Forward(x)
			total += dotLoss(gys[i], step.Output().Values)
		}
		return total
	}

	seq := NewSequence(newStep)
	for _, x := range inputs {
		seq.Forward(x)
	}
	for i := 0; i < seq.Len(); i++ {
		seq.At(i).Output().Grad.SetCol(0, gys[i])
	}
	seq.Backward(true)

	ps := params.Params()
	total := make([]*mat.Dense, len(ps))
	for i, p := range ps {
		total[i] = zerosLike(p.Value())
	}
	for s := 0; s < seq.Len(); s++ {
		for gi, g := range seq.At(s).Grads() {
			total[gi].Add(total[gi], g)
		}
	}
	assertParamGrads(t, ps, total, loss)

	const eps = 1e-6
	for s := range inputs {
		for i := range inputs[s] {
			orig := inputs[s][i]
			inputs[s][i] = orig + eps
			lp := loss()
			inputs[s][i] = orig - eps
			lm := loss()
			inputs[s][i] = orig
			want := (lp - lm) / (2 * eps)
			assert.InDelta(t, want, seq.At(s).Input().Grad.At(i, 0), 1e-4,
				"input gradient step %d element %d", s, i)
		}
	}
}

func TestTPR_TrackingNotImplemented(t *testing.T) {
	l := NewTPR(2, 2, 2, 2, 2, Sigmoid{}, testRand())

	err := l.ForwardTracked()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotImplemented)

	err = l.PropagateRelevance()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotImplemented)
}
