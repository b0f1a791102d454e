package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// TPRParams is the shared parameter set of a TPR layer: the two gated
// sub-units plus the bias-free role and symbol projections.
type TPRParams struct {
	RoleUnit   *GateParams // aR
	SymbolUnit *GateParams // aS
	R          *Param      // dR×nR role projection
	S          *Param      // dS×nS symbol projection
}

// NewTPRParams creates a TPR parameter set for the given sizes.
func NewTPRParams(inSize, nR, nS, dR, dS int, rng *rand.Rand) *TPRParams {
	outSize := dS * dR
	return &TPRParams{
		RoleUnit:   NewGateParams("roleUnit", inSize, nR, outSize, rng),
		SymbolUnit: NewGateParams("symbolUnit", inSize, nS, outSize, rng),
		R:          NewParam("roleEmbedding", dR, nR, rng),
		S:          NewParam("symbolEmbedding", dS, nS, rng),
	}
}

// Params returns all parameters of the set.
func (p *TPRParams) Params() []*Param {
	out := p.RoleUnit.Params()
	out = append(out, p.SymbolUnit.Params()...)
	out = append(out, p.R, p.S)
	return out
}

type tprGrads struct {
	roleUnit   *GateGrads
	symbolUnit *GateGrads
	r          *mat.Dense
	s          *mat.Dense
}

// TPR is a tensor-product-representation layer.
//
// Forward for one time step:
//
//	aR = act(WinR·x + bR [+ WrecR·yPrev])
//	aS = act(WinS·x + bS [+ WrecS·yPrev])
//	r  = R·aR
//	s  = S·aS
//	B  = s ⊗ rᵗ
//	y  = vec(B)
//
// The binding matrix B (dS×dR) is flattened row-major into the output
// vector: rows outer, columns inner. Backward un-flattens the output error
// in the same layout before inverting the outer product. Contribution
// tracking is not implemented for this family; the tracked entry points
// fail with ErrNotImplemented rather than computing without contributions.
type TPR struct {
	inSize int
	nR, nS int
	dR, dS int
	act    Activation

	params *TPRParams
	grads  *tprGrads

	input  *Signal
	output *Signal // (dS·dR)×1

	aR *Gate
	aS *Gate
	r  *mat.Dense // dR×1
	s  *mat.Dense // dS×1

	bind *mat.Dense // dS×dR
	gB   *mat.Dense // dS×dR scratch for backward
}

// NewTPR creates a TPR layer with a fresh parameter set. act is the
// activation of both gated sub-units.
func NewTPR(inSize, nR, nS, dR, dS int, act Activation, rng *rand.Rand) *TPR {
	return NewTPRShared(inSize, nR, nS, dR, dS, act, NewTPRParams(inSize, nR, nS, dR, dS, rng))
}

// NewTPRShared creates a TPR step instance over an existing parameter set.
func NewTPRShared(inSize, nR, nS, dR, dS int, act Activation, params *TPRParams) *TPR {
	return &TPR{
		inSize: inSize,
		nR:     nR,
		nS:     nS,
		dR:     dR,
		dS:     dS,
		act:    act,
		params: params,
		grads: &tprGrads{
			roleUnit:   newGateGrads(params.RoleUnit),
			symbolUnit: newGateGrads(params.SymbolUnit),
			r:          mat.NewDense(dR, nR, nil),
			s:          mat.NewDense(dS, nS, nil),
		},
		input:  NewSignal(inSize),
		output: NewSignal(dS * dR),
		aR:     newGate(nR, act),
		aS:     newGate(nS, act),
		r:      mat.NewDense(dR, 1, nil),
		s:      mat.NewDense(dS, 1, nil),
		bind:   mat.NewDense(dS, dR, nil),
		gB:     mat.NewDense(dS, dR, nil),
	}
}

// Kind returns KindTPR.
func (l *TPR) Kind() Kind { return KindTPR }

// Input returns the input signal.
func (l *TPR) Input() *Signal { return l.input }

// Output returns the output signal of length dS·dR.
func (l *TPR) Output() *Signal { return l.output }

// SetInput overwrites the input values.
func (l *TPR) SetInput(x []float64) { l.input.Set(x) }

// SharedParams returns the layer's parameter set for building further
// step instances.
func (l *TPR) SharedParams() *TPRParams { return l.params }

// Params returns the shared parameters.
func (l *TPR) Params() []*Param { return l.params.Params() }

// Grads returns the per-step gradient buffers, aligned with Params.
func (l *TPR) Grads() []*mat.Dense {
	out := l.grads.roleUnit.list()
	out = append(out, l.grads.symbolUnit.list()...)
	out = append(out, l.grads.r, l.grads.s)
	return out
}

// Forward computes the sequence-start step (no previous state).
func (l *TPR) Forward() { l.ForwardStep(nil) }

// ForwardStep computes one time step. prev is the previous step's layer
// instance, or nil at sequence start.
func (l *TPR) ForwardStep(prev *TPR) {
	x := l.input.Values
	l.aR.forward(l.params.RoleUnit, x)
	l.aS.forward(l.params.SymbolUnit, x)
	if prev != nil {
		l.aR.addRecurrent(l.params.RoleUnit, prev.output.Values)
		l.aS.addRecurrent(l.params.SymbolUnit, prev.output.Values)
	}
	l.aR.activate()
	l.aS.activate()

	l.r.Mul(l.params.R.Value(), l.aR.Val)
	l.s.Mul(l.params.S.Value(), l.aS.Val)
	l.bind.Mul(l.s, l.r.T())
	flattenRowMajor(l.bind, l.output.Values)
}

// Backward computes the sequence-start step backward (no previous state).
func (l *TPR) Backward(propagateToInput bool) { l.BackwardStep(nil, propagateToInput) }

// BackwardStep computes one time step of BPTT, in reverse sequence order.
func (l *TPR) BackwardStep(prev *TPR, propagateToInput bool) {
	x := l.input.Values

	unflattenRowMajor(l.output.Grad, l.gB)

	// B = s·rᵗ, so gs = gB·r and gr = gBᵗ·s.
	var gs, gr mat.Dense
	gs.Mul(l.gB, l.r)
	gr.Mul(l.gB.T(), l.s)

	l.grads.s.Mul(&gs, l.aS.Val.T())
	l.grads.r.Mul(&gr, l.aR.Val.T())

	var up mat.Dense
	up.Mul(l.params.S.Value().T(), &gs)
	l.aS.deltaFrom(&up)
	up.Reset()
	up.Mul(l.params.R.Value().T(), &gr)
	l.aR.deltaFrom(&up)

	var yPrev *mat.Dense
	if prev != nil {
		yPrev = prev.output.Values
	}
	l.aR.assignParamGrads(l.grads.roleUnit, x, yPrev)
	l.aS.assignParamGrads(l.grads.symbolUnit, x, yPrev)

	if prev != nil {
		var rec mat.Dense
		rec.Mul(l.params.RoleUnit.WRec.Value().T(), l.aR.Delta)
		prev.output.AddGrad(&rec)
		var recS mat.Dense
		recS.Mul(l.params.SymbolUnit.WRec.Value().T(), l.aS.Delta)
		prev.output.AddGrad(&recS)
	}

	if propagateToInput {
		var gx, t mat.Dense
		gx.Mul(l.params.RoleUnit.W.Value().T(), l.aR.Delta)
		t.Mul(l.params.SymbolUnit.W.Value().T(), l.aS.Delta)
		gx.Add(&gx, &t)
		l.input.AddGrad(&gx)
	}
}

// ForwardTracked is not implemented for the TPR family.
func (l *TPR) ForwardTracked() error {
	return fmt.Errorf("tpr: contribution tracking: %w", ErrNotImplemented)
}

// PropagateRelevance is not implemented for the TPR family.
func (l *TPR) PropagateRelevance() error {
	return fmt.Errorf("tpr: relevance propagation: %w", ErrNotImplemented)
}

// flattenRowMajor writes the dS×dR matrix b into the (dS·dR)×1 column dst,
// rows outer, columns inner. This exact ordering is part of the layer
// contract; backward relies on unflattenRowMajor mirroring it.
func flattenRowMajor(b, dst *mat.Dense) {
	rows, cols := b.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst.Set(i*cols+j, 0, b.At(i, j))
		}
	}
}

// unflattenRowMajor reads the (rows·cols)×1 column src into the rows×cols
// matrix dst using the same layout as flattenRowMajor.
func unflattenRowMajor(src, dst *mat.Dense) {
	rows, cols := dst.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst.Set(i, j, src.At(i*cols+j, 0))
		}
	}
}
