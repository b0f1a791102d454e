package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Biaffine merges two input signals with a bilinear term per output
// element plus two affine terms.
//
// Forward:
//
//	w[i] = (Wi·x1)ᵗ·x2          // scalar, one weight slice per output
//	y    = f(w + W1·x1 + W2·x2 + b)
//
// Backward computes gradients for b, W1, W2 and every slice Wi, and
// optionally propagates error to both inputs. Contribution tracking is not
// implemented for this family and fails with ErrNotImplemented.
type Biaffine struct {
	in1Size int
	in2Size int
	outSize int
	act     Activation

	w1     *Param   // out×in1
	w2     *Param   // out×in2
	b      *Param   // out×1
	slices []*Param // out slices, each in2×in1

	gW1     *mat.Dense
	gW2     *mat.Dense
	gB      *mat.Dense
	gSlices []*mat.Dense

	input1 *Signal
	input2 *Signal
	output *Signal

	pre   *mat.Dense // out×1
	delta *mat.Dense // out×1
}

// NewBiaffine creates a biaffine merge layer. numSlices bilinear weight
// slices are created; it must equal outSize or zero (no bilinear term).
func NewBiaffine(in1Size, in2Size, outSize int, numSlices int, act Activation, rng *rand.Rand) (*Biaffine, error) {
	if numSlices != 0 && numSlices != outSize {
		return nil, fmt.Errorf("biaffine: %w: %d bilinear slices for %d outputs (want 0 or %d)",
			ErrInvalidConfig, numSlices, outSize, outSize)
	}
	l := &Biaffine{
		in1Size: in1Size,
		in2Size: in2Size,
		outSize: outSize,
		act:     act,
		w1:      NewParam("biaffine.weight1", outSize, in1Size, rng),
		w2:      NewParam("biaffine.weight2", outSize, in2Size, rng),
		b:       NewParam("biaffine.bias", outSize, 1, nil),
		input1:  NewSignal(in1Size),
		input2:  NewSignal(in2Size),
		output:  NewSignal(outSize),
		pre:     mat.NewDense(outSize, 1, nil),
		delta:   mat.NewDense(outSize, 1, nil),
	}
	l.gW1 = zerosLike(l.w1.Value())
	l.gW2 = zerosLike(l.w2.Value())
	l.gB = zerosLike(l.b.Value())
	for i := 0; i < numSlices; i++ {
		l.slices = append(l.slices, NewParam(fmt.Sprintf("biaffine.slice%d", i), in2Size, in1Size, rng))
		l.gSlices = append(l.gSlices, mat.NewDense(in2Size, in1Size, nil))
	}
	return l, nil
}

// Kind returns KindBiaffine.
func (l *Biaffine) Kind() Kind { return KindBiaffine }

// Input1 returns the first input signal.
func (l *Biaffine) Input1() *Signal { return l.input1 }

// Input2 returns the second input signal.
func (l *Biaffine) Input2() *Signal { return l.input2 }

// Output returns the output signal.
func (l *Biaffine) Output() *Signal { return l.output }

// Params returns the affine parameters followed by the bilinear slices.
func (l *Biaffine) Params() []*Param {
	out := []*Param{l.w1, l.w2, l.b}
	return append(out, l.slices...)
}

// Grads returns the per-step gradient buffers, aligned with Params.
func (l *Biaffine) Grads() []*mat.Dense {
	out := []*mat.Dense{l.gW1, l.gW2, l.gB}
	return append(out, l.gSlices...)
}

// Forward computes y = f(w + W1·x1 + W2·x2 + b).
func (l *Biaffine) Forward() {
	x1, x2 := l.input1.Values, l.input2.Values

	l.pre.Mul(l.w1.Value(), x1)
	var t mat.Dense
	t.Mul(l.w2.Value(), x2)
	l.pre.Add(l.pre, &t)
	l.pre.Add(l.pre, l.b.Value())

	// Bilinear term: each slice contributes the (1×1) product
	// (Wi·x1)ᵗ·x2 to output element i.
	for i, slice := range l.slices {
		var v, s mat.Dense
		v.Mul(slice.Value(), x1)
		s.Mul(v.T(), x2)
		l.pre.Set(i, 0, l.pre.At(i, 0)+s.At(0, 0))
	}

	applyForward(l.output.Values, l.pre, l.act)
}

// Backward computes the parameter gradients from the seeded output
// gradient and, when requested, accumulates error on both inputs.
func (l *Biaffine) Backward(propagateToInput bool) {
	x1, x2 := l.input1.Values, l.input2.Values

	applyDerivative(l.delta, l.pre, l.act)
	l.delta.MulElem(l.delta, l.output.Grad)

	l.gB.Copy(l.delta)
	l.gW1.Mul(l.delta, x1.T())
	l.gW2.Mul(l.delta, x2.T())
	for i, g := range l.gSlices {
		// d w[i] / d Wi = x2·x1ᵗ
		g.Mul(x2, x1.T())
		g.Scale(l.delta.At(i, 0), g)
	}

	if !propagateToInput {
		return
	}
	var gx1, gx2, t mat.Dense
	gx1.Mul(l.w1.Value().T(), l.delta)
	gx2.Mul(l.w2.Value().T(), l.delta)
	for i, slice := range l.slices {
		d := l.delta.At(i, 0)
		t.Reset()
		t.Mul(slice.Value().T(), x2)
		t.Scale(d, &t)
		gx1.Add(&gx1, &t)
		t.Reset()
		t.Mul(slice.Value(), x1)
		t.Scale(d, &t)
		gx2.Add(&gx2, &t)
	}
	l.input1.AddGrad(&gx1)
	l.input2.AddGrad(&gx2)
}

// ForwardTracked is not implemented for the biaffine family.
func (l *Biaffine) ForwardTracked() error {
	return fmt.Errorf("biaffine: contribution tracking: %w", ErrNotImplemented)
}

// PropagateRelevance is not implemented for the biaffine family.
func (l *Biaffine) PropagateRelevance() error {
	return fmt.Errorf("biaffine: relevance propagation: %w", ErrNotImplemented)
}
