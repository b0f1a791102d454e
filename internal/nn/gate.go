package nn

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// GateParams holds the parameters of one gate unit: input weights, bias
// and, for recurrent gates, recurrent weights.
type GateParams struct {
	W    *Param // out×in
	B    *Param // out×1
	WRec *Param // out×rec, nil for non-recurrent gates
}

// NewGateParams creates a gate parameter set. Weights are
// Xavier-initialized, the bias starts at zero. recSize == 0 builds a
// non-recurrent gate.
func NewGateParams(name string, inSize, outSize, recSize int, rng *rand.Rand) *GateParams {
	p := &GateParams{
		W: NewParam(name+".weight", outSize, inSize, rng),
		B: NewParam(name+".bias", outSize, 1, nil),
	}
	if recSize > 0 {
		p.WRec = NewParam(name+".recurrentWeight", outSize, recSize, rng)
	}
	return p
}

// Params returns the non-nil parameters of the gate.
func (p *GateParams) Params() []*Param {
	out := []*Param{p.W, p.B}
	if p.WRec != nil {
		out = append(out, p.WRec)
	}
	return out
}

// GateGrads holds per-step gradient buffers shaped like a GateParams.
type GateGrads struct {
	W    *mat.Dense
	B    *mat.Dense
	WRec *mat.Dense // nil for non-recurrent gates
}

func newGateGrads(p *GateParams) *GateGrads {
	g := &GateGrads{
		W: zerosLike(p.W.Value()),
		B: zerosLike(p.B.Value()),
	}
	if p.WRec != nil {
		g.WRec = zerosLike(p.WRec.Value())
	}
	return g
}

// list returns the gradient buffers index-aligned with GateParams.Params.
func (g *GateGrads) list() []*mat.Dense {
	out := []*mat.Dense{g.W, g.B}
	if g.WRec != nil {
		out = append(out, g.WRec)
	}
	return out
}

// Gate is the per-step compute state of one gate unit: the pre-activation
// and activated buffers plus the backward delta. Transient per time step.
type Gate struct {
	Act   Activation
	Pre   *mat.Dense // out×1, W·x + b [+ WRec·yPrev]
	Val   *mat.Dense // out×1, Act(Pre)
	Delta *mat.Dense // out×1, dLoss/dPre
}

func newGate(outSize int, act Activation) *Gate {
	return &Gate{
		Act:   act,
		Pre:   mat.NewDense(outSize, 1, nil),
		Val:   mat.NewDense(outSize, 1, nil),
		Delta: mat.NewDense(outSize, 1, nil),
	}
}

// forward computes the activation-free linear part Pre = W·x + b.
func (g *Gate) forward(p *GateParams, x *mat.Dense) {
	g.Pre.Mul(p.W.Value(), x)
	g.Pre.Add(g.Pre, p.B.Value())
}

// addRecurrent adds WRec·yPrev to the pre-activation. Must be called
// between forward and activate, and only when a previous state exists.
func (g *Gate) addRecurrent(p *GateParams, yPrev *mat.Dense) {
	var rec mat.Dense
	rec.Mul(p.WRec.Value(), yPrev)
	g.Pre.Add(g.Pre, &rec)
}

// activate applies the gate activation to the pre-activation buffer.
func (g *Gate) activate() {
	applyForward(g.Val, g.Pre, g.Act)
}

// assignParamGrads overwrites the gate's parameter gradient buffers from
// the current Delta: gB = Delta, gW = Delta·xᵗ, gWRec = Delta·yPrevᵗ.
//
// Overwrite, not sum: a caller that needs gradients aggregated across time
// steps must accumulate these buffers elsewhere (the optimizer does).
// yPrev may be nil at sequence start, which zeroes the recurrent gradient.
func (g *Gate) assignParamGrads(gr *GateGrads, x, yPrev *mat.Dense) {
	gr.B.Copy(g.Delta)
	gr.W.Mul(g.Delta, x.T())
	if gr.WRec != nil {
		if yPrev != nil {
			gr.WRec.Mul(g.Delta, yPrev.T())
		} else {
			gr.WRec.Zero()
		}
	}
}

// deltaFrom sets Delta = upstream ⊙ Act'(Pre).
func (g *Gate) deltaFrom(upstream *mat.Dense) {
	applyDerivative(g.Delta, g.Pre, g.Act)
	g.Delta.MulElem(g.Delta, upstream)
}

func zerosLike(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	return mat.NewDense(r, c, nil)
}
