// Copyright 2025 The Strand Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers with hand-derived forward and
// backward passes.
//
// # Overview
//
// This package contains:
//   - Layers: FeedForward, RAN, TPR, Biaffine, Product, LayerNorm
//   - Signals: value buffers with parallel gradient and relevance buffers
//   - Sequences: indexed context windows for recurrent layers (BPTT)
//   - Activations: Identity, Sigmoid, Tanh, ReLU
//   - Relevance: contribution-based redistribution for interpretability
//
// # Basic Usage
//
//	import (
//	    "math/rand/v2"
//
//	    "github.com/strand-ml/strand/nn"
//	)
//
//	func main() {
//	    rng := rand.New(rand.NewPCG(42, 42))
//
//	    params := nn.NewRANParams(3, 2, rng)
//	    seq := nn.NewSequence(func() *nn.RAN {
//	        return nn.NewRANShared(3, 2, nn.Tanh{}, params)
//	    })
//
//	    for _, x := range inputs {
//	        seq.Forward(x)
//	    }
//	    // seed the per-step output gradients, then:
//	    seq.Backward(true)
//	}
//
// All numeric buffers are gonum column matrices; shape mismatches panic
// in the array collaborator and are never masked. Gradients are derived
// by hand per layer family; there is no automatic differentiation.
package nn
