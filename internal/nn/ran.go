package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// RANParams is the shared parameter set of a RAN layer: input gate,
// forget gate (both recurrent) and the linear candidate.
type RANParams struct {
	InputGate  *GateParams
	ForgetGate *GateParams
	Candidate  *GateParams // no recurrent weights, no activation
}

// NewRANParams creates a RAN parameter set for the given sizes.
func NewRANParams(inSize, outSize int, rng *rand.Rand) *RANParams {
	return &RANParams{
		InputGate:  NewGateParams("inputGate", inSize, outSize, outSize, rng),
		ForgetGate: NewGateParams("forgetGate", inSize, outSize, outSize, rng),
		Candidate:  NewGateParams("candidate", inSize, outSize, 0, rng),
	}
}

// Params returns all parameters of the set.
func (p *RANParams) Params() []*Param {
	out := p.InputGate.Params()
	out = append(out, p.ForgetGate.Params()...)
	out = append(out, p.Candidate.Params()...)
	return out
}

type ranGrads struct {
	inputGate  *GateGrads
	forgetGate *GateGrads
	candidate  *GateGrads
}

// gateContrib records one gate's pre-activation split into the part driven
// by the current input and the part driven by the recurrent connection.
type gateContrib struct {
	Input     *mat.Dense // out×1, W·x (+ half bias when a previous state exists)
	Recurrent *mat.Dense // out×1, WRec·yPrev + half bias; zero at sequence start
}

func newGateContrib(outSize int) *gateContrib {
	return &gateContrib{
		Input:     mat.NewDense(outSize, 1, nil),
		Recurrent: mat.NewDense(outSize, 1, nil),
	}
}

// RAN is a recurrent additive network layer.
//
// Forward for one time step:
//
//	inG  = σ(Win·x  + bIn  [+ WrecIn·yPrev])
//	forG = σ(Wfor·x + bFor [+ WrecFor·yPrev])
//	c    = Wc·x + bc
//	y    = f(inG ⊙ c [+ forG ⊙ yPrevPre])
//
// where yPrev is the previous step's activated output and yPrevPre its
// pre-activation value. The forget term multiplies the pre-activation
// output, not the activated one; preserving that exact choice matters for
// numeric compatibility. At sequence start (no previous state) the
// recurrent terms are omitted entirely.
//
// Backward for one time step, with gPre = f'(outPre) ⊙ gy plus the forget
// contribution carried back from the following step:
//
//	delta(c)    = gPre ⊙ inG
//	delta(inG)  = gPre ⊙ c ⊙ σ'(inGPre)
//	delta(forG) = gPre ⊙ yPrevPre ⊙ σ'(forGPre)
//
// The recurrence adds gPre ⊙ forG into the previous step's pre-activation
// gradient and the recurrent-weight paths Wrecᵗ·delta into the previous
// step's output gradient.
type RAN struct {
	inSize  int
	outSize int
	outAct  Activation

	params *RANParams
	grads  *ranGrads

	input  *Signal
	output *Signal

	inG  *Gate
	forG *Gate
	cand *Gate

	outPre   *mat.Dense // out×1, pre-activation output
	preGrad  *mat.Dense // out×1, dLoss/dOutPre carried back by the next step
	outDelta *mat.Dense // out×1 scratch
	tmp      *mat.Dense // out×1 scratch

	// contribution tracking
	tracked     bool
	inGContrib  *gateContrib
	forGContrib *gateContrib
	candContrib *mat.Dense // out×in, candidate contribution matrix
	inTerm      *mat.Dense // out×1, inG ⊙ c
	recTerm     *mat.Dense // out×1, forG ⊙ yPrevPre (zero at sequence start)
}

// NewRAN creates a RAN layer with a fresh Xavier-initialized parameter
// set. outAct is the output activation f.
func NewRAN(inSize, outSize int, outAct Activation, rng *rand.Rand) *RAN {
	return NewRANShared(inSize, outSize, outAct, NewRANParams(inSize, outSize, rng))
}

// NewRANShared creates a RAN step instance over an existing parameter
// set. Every time step of a sequence is one such instance; they share
// params but own their state and gradient buffers.
func NewRANShared(inSize, outSize int, outAct Activation, params *RANParams) *RAN {
	return &RAN{
		inSize:  inSize,
		outSize: outSize,
		outAct:  outAct,
		params:  params,
		grads: &ranGrads{
			inputGate:  newGateGrads(params.InputGate),
			forgetGate: newGateGrads(params.ForgetGate),
			candidate:  newGateGrads(params.Candidate),
		},
		input:    NewSignal(inSize),
		output:   NewSignal(outSize),
		inG:      newGate(outSize, Sigmoid{}),
		forG:     newGate(outSize, Sigmoid{}),
		cand:     newGate(outSize, Identity{}),
		outPre:   mat.NewDense(outSize, 1, nil),
		preGrad:  mat.NewDense(outSize, 1, nil),
		outDelta: mat.NewDense(outSize, 1, nil),
		tmp:      mat.NewDense(outSize, 1, nil),
	}
}

// Kind returns KindRAN.
func (l *RAN) Kind() Kind { return KindRAN }

// Input returns the input signal.
func (l *RAN) Input() *Signal { return l.input }

// Output returns the output signal.
func (l *RAN) Output() *Signal { return l.output }

// SetInput overwrites the input values.
func (l *RAN) SetInput(x []float64) { l.input.Set(x) }

// OutPre returns the pre-activation output of the current step.
func (l *RAN) OutPre() *mat.Dense { return l.outPre }

// SharedParams returns the layer's parameter set for building further
// step instances.
func (l *RAN) SharedParams() *RANParams { return l.params }

// Params returns the shared parameters.
func (l *RAN) Params() []*Param { return l.params.Params() }

// Grads returns the per-step gradient buffers, aligned with Params.
func (l *RAN) Grads() []*mat.Dense {
	out := l.grads.inputGate.list()
	out = append(out, l.grads.forgetGate.list()...)
	out = append(out, l.grads.candidate.list()...)
	return out
}

// Forward computes the sequence-start step (no previous state).
func (l *RAN) Forward() { l.ForwardStep(nil) }

// ForwardStep computes one time step. prev is the previous step's layer
// instance, or nil at sequence start.
func (l *RAN) ForwardStep(prev *RAN) {
	x := l.input.Values
	l.inG.forward(l.params.InputGate, x)
	l.forG.forward(l.params.ForgetGate, x)
	l.cand.forward(l.params.Candidate, x)
	if prev != nil {
		l.inG.addRecurrent(l.params.InputGate, prev.output.Values)
		l.forG.addRecurrent(l.params.ForgetGate, prev.output.Values)
	}
	l.inG.activate()
	l.forG.activate()
	l.cand.activate()

	l.outPre.MulElem(l.inG.Val, l.cand.Val)
	if prev != nil {
		l.tmp.MulElem(l.forG.Val, prev.outPre)
		l.outPre.Add(l.outPre, l.tmp)
	}
	applyForward(l.output.Values, l.outPre, l.outAct)
}

// Backward computes the sequence-start step backward (no previous state).
func (l *RAN) Backward(propagateToInput bool) { l.BackwardStep(nil, propagateToInput) }

// BackwardStep computes one time step of BPTT, in reverse sequence order.
// It overwrites the per-step parameter gradients and, when prev is
// non-nil, adds the recurrent error contributions into prev's buffers.
func (l *RAN) BackwardStep(prev *RAN, propagateToInput bool) {
	x := l.input.Values

	// gPre = f'(outPre) ⊙ gy, plus the forget-path gradient the next
	// step carried back.
	applyDerivative(l.outDelta, l.outPre, l.outAct)
	l.outDelta.MulElem(l.outDelta, l.output.Grad)
	l.outDelta.Add(l.outDelta, l.preGrad)
	l.preGrad.Zero()

	l.tmp.MulElem(l.outDelta, l.inG.Val)
	l.cand.deltaFrom(l.tmp)

	l.tmp.MulElem(l.outDelta, l.cand.Val)
	l.inG.deltaFrom(l.tmp)

	if prev != nil {
		l.tmp.MulElem(l.outDelta, prev.outPre)
		l.forG.deltaFrom(l.tmp)
	} else {
		l.forG.Delta.Zero()
	}

	var yPrev *mat.Dense
	if prev != nil {
		yPrev = prev.output.Values
	}
	l.inG.assignParamGrads(l.grads.inputGate, x, yPrev)
	l.forG.assignParamGrads(l.grads.forgetGate, x, yPrev)
	l.cand.assignParamGrads(l.grads.candidate, x, nil)

	if prev != nil {
		l.tmp.MulElem(l.outDelta, l.forG.Val)
		prev.preGrad.Add(prev.preGrad, l.tmp)

		var rec mat.Dense
		rec.Mul(l.params.InputGate.WRec.Value().T(), l.inG.Delta)
		prev.output.AddGrad(&rec)
		var recFor mat.Dense
		recFor.Mul(l.params.ForgetGate.WRec.Value().T(), l.forG.Delta)
		prev.output.AddGrad(&recFor)
	}

	if propagateToInput {
		var gx, t mat.Dense
		gx.Mul(l.params.InputGate.W.Value().T(), l.inG.Delta)
		t.Mul(l.params.ForgetGate.W.Value().T(), l.forG.Delta)
		gx.Add(&gx, &t)
		t.Reset()
		t.Mul(l.params.Candidate.W.Value().T(), l.cand.Delta)
		gx.Add(&gx, &t)
		l.input.AddGrad(&gx)
	}
}

// ForwardTracked computes the sequence-start step while recording
// contributions.
func (l *RAN) ForwardTracked() error { return l.ForwardStepTracked(nil) }

// ForwardStepTracked computes one time step like ForwardStep and records,
// per gate, the contribution of the input path separately from the
// recurrent path. When a previous state exists the gate bias is halved and
// the same half is added to both records, so their sum reconstructs the
// un-split biased pre-activation exactly. The candidate additionally
// records its full contribution matrix for input relevance.
func (l *RAN) ForwardStepTracked(prev *RAN) error {
	if !l.tracked {
		l.inGContrib = newGateContrib(l.outSize)
		l.forGContrib = newGateContrib(l.outSize)
		l.candContrib = mat.NewDense(l.outSize, l.inSize, nil)
		l.inTerm = mat.NewDense(l.outSize, 1, nil)
		l.recTerm = mat.NewDense(l.outSize, 1, nil)
		l.tracked = true
	}
	x := l.input.Values
	var yPrev *mat.Dense
	if prev != nil {
		yPrev = prev.output.Values
	}
	trackedGateForward(l.inG, l.params.InputGate, x, yPrev, l.inGContrib)
	trackedGateForward(l.forG, l.params.ForgetGate, x, yPrev, l.forGContrib)

	// Candidate: no recurrent path, spread the bias across the row like
	// the feedforward contribution rule.
	w := l.params.Candidate.W.Value()
	b := l.params.Candidate.B.Value()
	biasShare := 1.0 / float64(l.inSize)
	for j := 0; j < l.outSize; j++ {
		sum := 0.0
		for k := 0; k < l.inSize; k++ {
			c := w.At(j, k)*x.At(k, 0) + b.At(j, 0)*biasShare
			l.candContrib.Set(j, k, c)
			sum += c
		}
		l.cand.Pre.Set(j, 0, sum)
	}
	l.cand.activate()

	l.inTerm.MulElem(l.inG.Val, l.cand.Val)
	l.outPre.Copy(l.inTerm)
	if prev != nil {
		l.recTerm.MulElem(l.forG.Val, prev.outPre)
		l.outPre.Add(l.outPre, l.recTerm)
	} else {
		l.recTerm.Zero()
	}
	applyForward(l.output.Values, l.outPre, l.outAct)
	return nil
}

// trackedGateForward computes a gate's pre-activation while splitting it
// into input and recurrent contributions. With a previous state the bias
// is divided by 2.0 and the same half goes into both records; without one
// the input record carries the whole bias and the recurrent record is
// zero.
func trackedGateForward(g *Gate, p *GateParams, x, yPrev *mat.Dense, c *gateContrib) {
	c.Input.Mul(p.W.Value(), x)
	if yPrev != nil && p.WRec != nil {
		var half mat.Dense
		half.Scale(0.5, p.B.Value())
		c.Input.Add(c.Input, &half)
		c.Recurrent.Mul(p.WRec.Value(), yPrev)
		c.Recurrent.Add(c.Recurrent, &half)
		g.Pre.Add(c.Input, c.Recurrent)
	} else {
		c.Input.Add(c.Input, p.B.Value())
		c.Recurrent.Zero()
		g.Pre.Copy(c.Input)
	}
	g.activate()
}

// InputGateContrib returns the input gate's recorded contribution split.
func (l *RAN) InputGateContrib() (input, recurrent *mat.Dense) {
	return l.inGContrib.Input, l.inGContrib.Recurrent
}

// ForgetGateContrib returns the forget gate's recorded contribution split.
func (l *RAN) ForgetGateContrib() (input, recurrent *mat.Dense) {
	return l.forGContrib.Input, l.forGContrib.Recurrent
}

// PropagateRelevance redistributes relevance for a sequence-start step.
func (l *RAN) PropagateRelevance() error { return l.PropagateRelevanceStep(nil) }

// PropagateRelevanceStep apportions the relevance seeded on the output
// between the input-driven term inG ⊙ c and the recurrent term
// forG ⊙ yPrevPre, proportionally to their recorded magnitudes. The
// recurrent share accumulates on prev's output relevance; the input share
// is redistributed to the input signal through the candidate contribution
// matrix.
func (l *RAN) PropagateRelevanceStep(prev *RAN) error {
	if !l.tracked {
		return fmt.Errorf("ran: relevance requires a tracked forward pass: %w", ErrInvalidConfig)
	}
	inRel := mat.NewDense(l.outSize, 1, nil)
	if prev == nil {
		inRel.Copy(l.output.Relevance)
	} else {
		recRel := mat.NewDense(l.outSize, 1, nil)
		splitByShare(l.inTerm, l.recTerm, l.output.Relevance, inRel, recRel)
		prev.output.Relevance.Add(prev.output.Relevance, recRel)
	}
	Redistribute(l.candContrib, inRel, l.input.Relevance)
	return nil
}
