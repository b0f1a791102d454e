package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// FeedForward is a fully connected layer.
//
// Performs the transformation: y = f(W·x + b)
// where:
//   - x is the input signal with shape [in, 1]
//   - W is the weight matrix with shape [out, in]
//   - b is the bias vector with shape [out, 1]
//   - f is the configured output activation
//
// Backward computes delta = gy ⊙ f'(pre), the parameter gradients
// gW = delta·xᵗ and gb = delta, and optionally the input error
// gx = Wᵗ·delta.
//
// Example:
//
//	rng := rand.New(rand.NewPCG(1, 1))
//	layer := nn.NewFeedForward(3, 2, nn.Tanh{}, rng)
//	layer.Input().Set([]float64{0.1, -0.4, 0.7})
//	layer.Forward()
type FeedForward struct {
	inSize  int
	outSize int
	act     Activation

	params *GateParams
	grads  *GateGrads

	input  *Signal
	output *Signal
	gate   *Gate

	// contrib[j,k] is x_k's share of output j's biased pre-activation,
	// recorded by ForwardTracked. Nil until tracking has run.
	contrib *mat.Dense
}

// NewFeedForward creates a feedforward layer with Xavier-initialized
// weights and zero biases.
func NewFeedForward(inSize, outSize int, act Activation, rng *rand.Rand) *FeedForward {
	params := NewGateParams("feedforward", inSize, outSize, 0, rng)
	return &FeedForward{
		inSize:  inSize,
		outSize: outSize,
		act:     act,
		params:  params,
		grads:   newGateGrads(params),
		input:   NewSignal(inSize),
		output:  NewSignal(outSize),
		gate:    newGate(outSize, act),
	}
}

// Kind returns KindFeedForward.
func (l *FeedForward) Kind() Kind { return KindFeedForward }

// Input returns the input signal.
func (l *FeedForward) Input() *Signal { return l.input }

// Output returns the output signal.
func (l *FeedForward) Output() *Signal { return l.output }

// SetInput overwrites the input values.
func (l *FeedForward) SetInput(x []float64) { l.input.Set(x) }

// Params returns the weight and bias parameters.
func (l *FeedForward) Params() []*Param { return l.params.Params() }

// Grads returns the per-step gradient buffers, aligned with Params.
func (l *FeedForward) Grads() []*mat.Dense { return l.grads.list() }

// Forward computes y = f(W·x + b).
func (l *FeedForward) Forward() {
	l.gate.forward(l.params, l.input.Values)
	l.gate.activate()
	l.output.Values.Copy(l.gate.Val)
}

// ForwardTracked computes the output like Forward and additionally records
// the contribution matrix contrib[j,k] = W[j,k]·x[k] + b[j]/in, so that
// every row sums to the biased pre-activation of output j. The bias is
// spread uniformly across the row; this is an attribution policy, not an
// approximation.
func (l *FeedForward) ForwardTracked() error {
	if l.contrib == nil {
		l.contrib = mat.NewDense(l.outSize, l.inSize, nil)
	}
	w := l.params.W.Value()
	b := l.params.B.Value()
	biasShare := 1.0 / float64(l.inSize)
	for j := 0; j < l.outSize; j++ {
		sum := 0.0
		for k := 0; k < l.inSize; k++ {
			c := w.At(j, k)*l.input.Values.At(k, 0) + b.At(j, 0)*biasShare
			l.contrib.Set(j, k, c)
			sum += c
		}
		l.gate.Pre.Set(j, 0, sum)
	}
	l.gate.activate()
	l.output.Values.Copy(l.gate.Val)
	return nil
}

// Backward computes the parameter gradients from the seeded output
// gradient and, when requested, accumulates the propagated error on the
// input signal.
func (l *FeedForward) Backward(propagateToInput bool) {
	l.gate.deltaFrom(l.output.Grad)
	l.gate.assignParamGrads(l.grads, l.input.Values, nil)
	if propagateToInput {
		var gx mat.Dense
		gx.Mul(l.params.W.Value().T(), l.gate.Delta)
		l.input.AddGrad(&gx)
	}
}

// PropagateRelevance redistributes the relevance seeded on the output
// signal to the input signal, proportionally to the contributions recorded
// by ForwardTracked.
func (l *FeedForward) PropagateRelevance() error {
	if l.contrib == nil {
		return fmt.Errorf("feedforward: relevance requires a tracked forward pass: %w", ErrInvalidConfig)
	}
	Redistribute(l.contrib, l.output.Relevance, l.input.Relevance)
	return nil
}
