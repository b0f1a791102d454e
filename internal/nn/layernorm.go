package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LayerNorm normalizes its input to zero mean and unit variance and
// applies a learned element-wise affine transform:
//
//	y = g ⊙ (x - μ) / sqrt(σ² + ε) + b
//
// Gain g starts at one, bias b at zero.
type LayerNorm struct {
	size int
	eps  float64

	g *Param // size×1
	b *Param // size×1

	gG *mat.Dense
	gB *mat.Dense

	input  *Signal
	output *Signal

	xhat   *mat.Dense
	invStd float64
}

// NewLayerNorm creates a layer normalization layer. eps <= 0 defaults
// to 1e-5.
func NewLayerNorm(size int, eps float64) *LayerNorm {
	if eps <= 0 {
		eps = 1e-5
	}
	g := NewParam("layernorm.gain", size, 1, nil)
	for i := 0; i < size; i++ {
		g.Value().Set(i, 0, 1)
	}
	l := &LayerNorm{
		size:   size,
		eps:    eps,
		g:      g,
		b:      NewParam("layernorm.bias", size, 1, nil),
		input:  NewSignal(size),
		output: NewSignal(size),
		xhat:   mat.NewDense(size, 1, nil),
	}
	l.gG = zerosLike(l.g.Value())
	l.gB = zerosLike(l.b.Value())
	return l
}

// Kind returns KindLayerNorm.
func (l *LayerNorm) Kind() Kind { return KindLayerNorm }

// Input returns the input signal.
func (l *LayerNorm) Input() *Signal { return l.input }

// Output returns the output signal.
func (l *LayerNorm) Output() *Signal { return l.output }

// SetInput overwrites the input values.
func (l *LayerNorm) SetInput(x []float64) { l.input.Set(x) }

// Params returns the gain and bias parameters.
func (l *LayerNorm) Params() []*Param { return []*Param{l.g, l.b} }

// Grads returns the per-step gradient buffers, aligned with Params.
func (l *LayerNorm) Grads() []*mat.Dense { return []*mat.Dense{l.gG, l.gB} }

// Forward normalizes the input and applies the affine transform.
func (l *LayerNorm) Forward() {
	x := l.input.Values
	n := float64(l.size)

	mu := 0.0
	for i := 0; i < l.size; i++ {
		mu += x.At(i, 0)
	}
	mu /= n

	variance := 0.0
	for i := 0; i < l.size; i++ {
		d := x.At(i, 0) - mu
		variance += d * d
	}
	variance /= n
	l.invStd = 1.0 / math.Sqrt(variance+l.eps)

	for i := 0; i < l.size; i++ {
		xh := (x.At(i, 0) - mu) * l.invStd
		l.xhat.Set(i, 0, xh)
		l.output.Values.Set(i, 0, l.g.Value().At(i, 0)*xh+l.b.Value().At(i, 0))
	}
}

// Backward computes the gain and bias gradients and, when requested, the
// input error through the normalization statistics.
func (l *LayerNorm) Backward(propagateToInput bool) {
	gy := l.output.Grad
	n := float64(l.size)

	l.gB.Copy(gy)
	l.gG.MulElem(gy, l.xhat)

	if !propagateToInput {
		return
	}

	// dxhat = gy ⊙ g; dx = invStd·(dxhat - mean(dxhat) - xhat·mean(dxhat ⊙ xhat))
	sum1, sum2 := 0.0, 0.0
	for i := 0; i < l.size; i++ {
		dxh := gy.At(i, 0) * l.g.Value().At(i, 0)
		sum1 += dxh
		sum2 += dxh * l.xhat.At(i, 0)
	}
	mean1, mean2 := sum1/n, sum2/n
	var gx mat.Dense
	gx.ReuseAs(l.size, 1)
	for i := 0; i < l.size; i++ {
		dxh := gy.At(i, 0) * l.g.Value().At(i, 0)
		gx.Set(i, 0, l.invStd*(dxh-mean1-l.xhat.At(i, 0)*mean2))
	}
	l.input.AddGrad(&gx)
}
