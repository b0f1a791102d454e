// Package nn implements the layer computation core of the Strand library.
//
// This package provides building blocks for sequence-oriented neural
// networks:
//   - Layer interface: common contract for all layer families
//   - Signal: a value buffer with parallel gradient and relevance buffers
//   - Gate: linear-transform-plus-activation primitive shared by gated layers
//   - Layers: FeedForward, RAN, TPR, Biaffine, Product, LayerNorm
//   - Sequence: indexed context window for recurrent layers (BPTT)
//   - Relevance: contribution-based redistribution for interpretability
//
// All numeric buffers are gonum column matrices (*mat.Dense with shape n×1
// for vectors). Gradients are hand-derived per layer family; there is no
// automatic differentiation.
package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Kind identifies a layer family.
//
// Layer dispatch happens through the Layer interface; the Kind tag exists
// for eager configuration validation, e.g. rejecting a bidirectional
// wrapper built over a non-recurrent family.
type Kind int

const (
	KindFeedForward Kind = iota
	KindRAN
	KindTPR
	KindBiaffine
	KindProduct
	KindLayerNorm
)

// Recurrent reports whether layers of this kind carry state across
// time steps.
func (k Kind) Recurrent() bool {
	return k == KindRAN || k == KindTPR
}

// String returns the family name.
func (k Kind) String() string {
	switch k {
	case KindFeedForward:
		return "feedforward"
	case KindRAN:
		return "ran"
	case KindTPR:
		return "tpr"
	case KindBiaffine:
		return "biaffine"
	case KindProduct:
		return "product"
	case KindLayerNorm:
		return "layernorm"
	default:
		return "unknown"
	}
}

// Layer is the base interface for all layer families.
//
// The calling contract is strict: Forward must be called before Backward
// for a given step, and the caller seeds Output().Grad before Backward
// (the core does not compute loss). Backward overwrites the per-step
// parameter gradient buffers returned by Grads; accumulation across steps
// or examples belongs to the optimizer.
//
// A Layer instance is single-writer: no concurrent Forward/Backward on the
// same instance. Independent instances may share a parameter set as long
// as the parameters are not mutated during the pass.
type Layer interface {
	// Kind returns the layer family tag.
	Kind() Kind

	// Forward computes the output from the current input values and
	// parameters. For recurrent families this is the sequence-start step
	// (no previous state).
	Forward()

	// Backward computes per-step parameter gradients from the seeded
	// output gradient. When propagateToInput is true it also accumulates
	// the error on the input signal(s).
	Backward(propagateToInput bool)

	// Output returns the output signal.
	Output() *Signal

	// Params returns the shared parameter set of this layer.
	Params() []*Param

	// Grads returns the per-step gradient buffers, index-aligned with
	// Params. Overwritten by each Backward call.
	Grads() []*mat.Dense
}

// ContributionTracker is the optional interface for layers that can record
// per-parameter contributions during forward and redistribute output
// relevance back to their inputs.
//
// Families without an implementation (TPR, Biaffine) return an error
// wrapping ErrNotImplemented from both methods; they never silently fall
// back to the plain forward path.
type ContributionTracker interface {
	// ForwardTracked runs a forward pass that additionally records
	// per-parameter contributions to the output.
	ForwardTracked() error

	// PropagateRelevance redistributes the relevance seeded on the output
	// signal back to the input signal(s), proportionally to the recorded
	// contributions. Requires a preceding ForwardTracked call.
	PropagateRelevance() error
}
