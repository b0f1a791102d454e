// Copyright 2025 The Strand Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/strand-ml/strand/internal/nn"
)

// Layer is the base interface for all layer families.
type Layer = nn.Layer

// ContributionTracker is the optional interface for layers that record
// per-parameter contributions and redistribute relevance.
type ContributionTracker = nn.ContributionTracker

// Kind identifies a layer family.
type Kind = nn.Kind

// Layer family tags.
const (
	KindFeedForward = nn.KindFeedForward
	KindRAN         = nn.KindRAN
	KindTPR         = nn.KindTPR
	KindBiaffine    = nn.KindBiaffine
	KindProduct     = nn.KindProduct
	KindLayerNorm   = nn.KindLayerNorm
)

// Sentinel errors.
var (
	ErrNotImplemented = nn.ErrNotImplemented
	ErrInvalidConfig  = nn.ErrInvalidConfig
)

// Signal is a value buffer with parallel gradient and relevance buffers.
type Signal = nn.Signal

// NewSignal creates a zero-valued signal of the given size.
func NewSignal(size int) *Signal { return nn.NewSignal(size) }

// NewSignalFrom creates a signal initialized with the given values.
func NewSignalFrom(values []float64) *Signal { return nn.NewSignalFrom(values) }

// Param is a named, trainable parameter array.
type Param = nn.Param

// NewParam creates a parameter of the given shape; a non-nil rng selects
// Xavier initialization.
func NewParam(name string, rows, cols int, rng *rand.Rand) *Param {
	return nn.NewParam(name, rows, cols, rng)
}

// Activations.
type (
	Activation = nn.Activation
	Identity   = nn.Identity
	Sigmoid    = nn.Sigmoid
	Tanh       = nn.Tanh
	ReLU       = nn.ReLU
)

// Layers

// FeedForward is a fully connected layer.
type FeedForward = nn.FeedForward

// NewFeedForward creates a feedforward layer with Xavier-initialized
// weights.
func NewFeedForward(inSize, outSize int, act Activation, rng *rand.Rand) *FeedForward {
	return nn.NewFeedForward(inSize, outSize, act, rng)
}

// RAN is a recurrent additive network layer.
type RAN = nn.RAN

// RANParams is the shared parameter set of a RAN layer.
type RANParams = nn.RANParams

// NewRANParams creates a RAN parameter set.
func NewRANParams(inSize, outSize int, rng *rand.Rand) *RANParams {
	return nn.NewRANParams(inSize, outSize, rng)
}

// NewRAN creates a RAN layer with a fresh parameter set.
func NewRAN(inSize, outSize int, outAct Activation, rng *rand.Rand) *RAN {
	return nn.NewRAN(inSize, outSize, outAct, rng)
}

// NewRANShared creates a RAN step instance over an existing parameter set.
func NewRANShared(inSize, outSize int, outAct Activation, params *RANParams) *RAN {
	return nn.NewRANShared(inSize, outSize, outAct, params)
}

// TPR is a tensor-product-representation layer.
type TPR = nn.TPR

// TPRParams is the shared parameter set of a TPR layer.
type TPRParams = nn.TPRParams

// NewTPRParams creates a TPR parameter set.
func NewTPRParams(inSize, nR, nS, dR, dS int, rng *rand.Rand) *TPRParams {
	return nn.NewTPRParams(inSize, nR, nS, dR, dS, rng)
}

// NewTPR creates a TPR layer with a fresh parameter set.
func NewTPR(inSize, nR, nS, dR, dS int, act Activation, rng *rand.Rand) *TPR {
	return nn.NewTPR(inSize, nR, nS, dR, dS, act, rng)
}

// NewTPRShared creates a TPR step instance over an existing parameter set.
func NewTPRShared(inSize, nR, nS, dR, dS int, act Activation, params *TPRParams) *TPR {
	return nn.NewTPRShared(inSize, nR, nS, dR, dS, act, params)
}

// Biaffine merges two inputs with a bilinear term per output element.
type Biaffine = nn.Biaffine

// NewBiaffine creates a biaffine merge layer.
func NewBiaffine(in1Size, in2Size, outSize, numSlices int, act Activation, rng *rand.Rand) (*Biaffine, error) {
	return nn.NewBiaffine(in1Size, in2Size, outSize, numSlices, act, rng)
}

// Product merges inputs into their element-wise product.
type Product = nn.Product

// NewProduct creates a product merge layer.
func NewProduct(size, numInputs int) (*Product, error) {
	return nn.NewProduct(size, numInputs)
}

// LayerNorm normalizes its input and applies a learned affine transform.
type LayerNorm = nn.LayerNorm

// NewLayerNorm creates a layer normalization layer.
func NewLayerNorm(size int, eps float64) *LayerNorm {
	return nn.NewLayerNorm(size, eps)
}

// Sequences

// RecurrentStep is the per-step contract of a recurrent layer family.
type RecurrentStep[T any] = nn.RecurrentStep[T]

// Recurrent is the full step contract the sequence wrappers need.
type Recurrent[T any] = nn.Recurrent[T]

// Sequence is the indexed context window of a recurrent layer.
type Sequence[T nn.Recurrent[T]] = nn.Sequence[T]

// NewSequence creates an empty sequence over shared parameters.
func NewSequence[T nn.Recurrent[T]](newStep func() T) *Sequence[T] {
	return nn.NewSequence(newStep)
}

// Bidirectional processes a sequence in both directions and concatenates
// the per-step outputs.
type Bidirectional[T nn.Recurrent[T]] = nn.Bidirectional[T]

// NewBidirectional creates a bidirectional wrapper; it rejects
// non-recurrent step types with ErrInvalidConfig.
func NewBidirectional[T nn.Recurrent[T]](newForward, newBackward func() T) (*Bidirectional[T], error) {
	return nn.NewBidirectional(newForward, newBackward)
}

// Relevance

// Redistribute propagates output relevance back to inputs proportionally
// to recorded contributions.
var Redistribute = nn.Redistribute
